package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	StorageProviderGCS   = "gcs"
	StorageProviderLocal = "local"
)

// GetStorageProvider picks where uploaded files live. Local disk is the
// default so a dev setup needs no cloud credentials.
func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		return StorageProviderLocal
	}
	return provider
}

func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC; GCS_CREDENTIALS_JSON is for explicit JSON (e.g. locally).
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func UploadBytesToGCS(ctx context.Context, objectName string, data []byte, contentType string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return errors.New("GCS_BUCKET is required")
	}

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		return fmt.Errorf("failed to upload bytes to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}

func localUploadDir() string {
	dir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

// SaveBytesLocal writes an upload under UPLOAD_DIR, creating directories
// as needed. objectName must already be sanitized.
func SaveBytesLocal(objectName string, data []byte) error {
	full := filepath.Join(localUploadDir(), filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// SaveUploadBytes stores the bytes with the configured provider and
// returns the public URL of the object.
func SaveUploadBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	switch GetStorageProvider() {
	case StorageProviderGCS:
		if err := UploadBytesToGCS(ctx, objectName, data, contentType); err != nil {
			return "", err
		}
	case StorageProviderLocal:
		if err := SaveBytesLocal(objectName, data); err != nil {
			return "", err
		}
	default:
		return "", errors.New("storage provider not supported")
	}
	return BuildObjectAccessURL(objectName), nil
}

func BuildObjectAccessURL(objectKey string) string {
	if GetStorageProvider() == StorageProviderGCS {
		gcsURL := strings.TrimSpace(os.Getenv("GCS_URL"))
		if gcsURL == "" {
			gcsURL = "storage.googleapis.com"
		}
		gcsBucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
		if gcsBucket != "" {
			return "https://" + gcsURL + "/" + gcsBucket + "/" + objectKey
		}
	}
	return "/uploads/" + objectKey
}
