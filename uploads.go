package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// uploadAvatarHandler accepts a multipart "file", resizes it to a square
// avatar and stores it with the configured provider.
func uploadAvatarHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())

		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, errors.New("file is required"))
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			respondError(c, http.StatusBadRequest, errors.New("file size exceeds 5MB limit"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, errors.New("could not read file"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
		if err != nil {
			respondError(c, http.StatusBadRequest, errors.New("could not read file"))
			return
		}
		if int64(len(data)) > maxUploadSizeBytes {
			respondError(c, http.StatusBadRequest, errors.New("file size exceeds 5MB limit"))
			return
		}

		mimeType := http.DetectContentType(data)
		if !imageMimeTypes[mimeType] {
			respondError(c, http.StatusBadRequest, errors.New("unsupported image type"))
			return
		}

		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			respondError(c, http.StatusBadRequest, errors.New("invalid image"))
			return
		}
		avatar := imaging.Fill(img, 256, 256, imaging.Center, imaging.Lanczos)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, avatar, imaging.JPEG); err != nil {
			respondError(c, http.StatusInternalServerError, errors.New("failed to encode avatar"))
			return
		}

		objectKey := path.Join("avatars", fmt.Sprintf("%d", userId), uuid.NewString()+".jpg")
		avatarUrl, err := utils.SaveUploadBytes(c.Request.Context(), objectKey, buf.Bytes(), "image/jpeg")
		if err != nil {
			config.LogError(logger, "uploads.go", "uploadAvatarHandler", "store avatar", userId, err)
			respondError(c, http.StatusInternalServerError, errors.New("failed to store avatar"))
			return
		}

		if err := models.UpdateAvatar(c.Request.Context(), userId, avatarUrl); err != nil {
			respondModelError(c, err)
			return
		}

		respondOK(c, gin.H{"avatar_url": avatarUrl})
	}
}

func sanitizeFilename(name string) string {
	name = path.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var out strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			out.WriteRune(r)
		}
	}
	return out.String()
}
