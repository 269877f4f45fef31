package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
	"github.com/shopspring/decimal"
)

// The OCR service is a separate deployment; we forward the uploaded invoice
// as-is and annotate its line items against the catalog before answering.

type ocrServiceResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Lines        []models.RawLine `json:"lines"`
		InvoiceTotal decimal.Decimal  `json:"invoice_total"`
		SupplierName string           `json:"supplier_name"`
	} `json:"data"`
}

type ocrInvoiceResponse struct {
	Lines        []models.RawLineGuess `json:"lines"`
	InvoiceTotal decimal.Decimal       `json:"invoice_total"`
	SupplierName string                `json:"supplier_name"`
}

var ocrHTTPClient = &http.Client{Timeout: 120 * time.Second}

func ocrInvoiceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		serviceURL := strings.TrimSpace(os.Getenv("OCR_SERVICE_URL"))
		if serviceURL == "" {
			respondError(c, http.StatusServiceUnavailable, errors.New("ocr service is not configured"))
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, errors.New("file is required"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, errors.New("could not read file"))
			return
		}
		defer file.Close()

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", sanitizeFilename(fileHeader.Filename))
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		if err := writer.Close(); err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost,
			strings.TrimRight(serviceURL, "/")+"/extract", &body)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := ocrHTTPClient.Do(req)
		if err != nil {
			config.LogError(logger, "ocr.go", "ocrInvoiceHandler", "call ocr service", serviceURL, err)
			respondError(c, http.StatusBadGateway, errors.New("ocr service is unreachable"))
			return
		}
		defer resp.Body.Close()

		var ocrResp ocrServiceResponse
		if err := json.NewDecoder(resp.Body).Decode(&ocrResp); err != nil {
			config.LogError(logger, "ocr.go", "ocrInvoiceHandler", "decode ocr response", nil, err)
			respondError(c, http.StatusBadGateway, errors.New("ocr service returned an invalid response"))
			return
		}
		if !ocrResp.Success {
			msg := ocrResp.Error
			if msg == "" {
				msg = fmt.Sprintf("ocr service failed (status %d)", resp.StatusCode)
			}
			respondError(c, http.StatusBadGateway, errors.New(msg))
			return
		}

		guesses, err := models.MatchInvoiceLines(c.Request.Context(), ocrResp.Data.Lines)
		if err != nil {
			respondModelError(c, err)
			return
		}

		respondOK(c, ocrInvoiceResponse{
			Lines:        guesses,
			InvoiceTotal: ocrResp.Data.InvoiceTotal,
			SupplierName: ocrResp.Data.SupplierName,
		})
	}
}
