// Package reconcile holds the client-side workflow for turning a scanned
// invoice into posted warehouse slips: matching OCR line items to catalog
// products, tracking per-row review state and submitting the result.
package reconcile

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ProductRef is the slice of the catalog a session works with.
type ProductRef struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Sku             string          `json:"sku"`
	QuantityInStock int             `json:"quantity_in_stock"`
	StandardPrice   decimal.Decimal `json:"standard_price"`
}

// OCRLine is one extracted invoice line, optionally pre-matched by the server.
type OCRLine struct {
	ItemName         string          `json:"itemName"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Amount           decimal.Decimal `json:"amount"`
	ProductId        *int            `json:"productId"`
	ProductName      string          `json:"productName"`
	Confidence       float64         `json:"confidence"`
	NeedsManualCheck bool            `json:"needsManualCheck"`
}

// OCRResult is the server's answer to an invoice upload.
type OCRResult struct {
	Lines        []OCRLine       `json:"lines"`
	InvoiceTotal decimal.Decimal `json:"invoice_total"`
	SupplierName string          `json:"supplier_name"`
}

// SlipItem is one line of a slip submission.
type SlipItem struct {
	ItemName  string          `json:"itemName"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
}

type ImportSlipRequest struct {
	SupplierName string          `json:"supplier_name"`
	InvoiceTotal decimal.Decimal `json:"invoice_total"`
	Items        []SlipItem      `json:"items"`
}

// ExportItem references a catalog product directly; the server resolves
// the name and price itself.
type ExportItem struct {
	ProductId int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type ExportSlipRequest struct {
	ReceiverName string       `json:"receiver_name"`
	Items        []ExportItem `json:"items"`
}

// Gateway is the backend surface the sessions need. The HTTP implementation
// lives in the client package; tests plug in fakes.
type Gateway interface {
	UploadInvoice(ctx context.Context, filename string, content []byte) (*OCRResult, error)
	FetchProducts(ctx context.Context) ([]ProductRef, error)
	SubmitImportSlip(ctx context.Context, req *ImportSlipRequest) error
	SubmitExportSlip(ctx context.Context, req *ExportSlipRequest) error
}

var (
	// ErrBusy means a submit is already in flight for this session.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrUnresolvedRows blocks submission while any row lacks a product.
	ErrUnresolvedRows = errors.New("all rows must be matched to a product before submitting")
	// ErrRowsNeedReview blocks submission while a flagged row is untouched.
	ErrRowsNeedReview = errors.New("flagged rows must be reviewed before submitting")
)
