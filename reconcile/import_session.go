package reconcile

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ImportSession drives one invoice-to-import-slip reconciliation.
// It is safe for a UI to call from multiple goroutines.
type ImportSession struct {
	gateway Gateway

	mu           sync.Mutex
	rows         []Row
	supplierName string
	invoiceTotal decimal.Decimal
	busy         bool
	submitted    bool
}

func NewImportSession(gateway Gateway) *ImportSession {
	return &ImportSession{gateway: gateway}
}

// LoadInvoice uploads the scanned invoice and replaces the session rows
// with the extracted, pre-matched lines.
func (s *ImportSession) LoadInvoice(ctx context.Context, filename string, content []byte) error {
	result, err := s.gateway.UploadInvoice(ctx, filename, content)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make([]Row, 0, len(result.Lines))
	for _, line := range result.Lines {
		s.rows = append(s.rows, rowFromOCRLine(line))
	}
	s.supplierName = result.SupplierName
	s.invoiceTotal = result.InvoiceTotal
	s.submitted = false
	return nil
}

// Rows returns a snapshot of the current rows.
func (s *ImportSession) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *ImportSession) SupplierName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supplierName
}

func (s *ImportSession) SetSupplierName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supplierName = name
}

func (s *ImportSession) InvoiceTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoiceTotal
}

// AddManualRow appends a row the OCR missed. It starts unmatched (NEW)
// but counts as user input, so once a product is picked it is CONFIRMED
// with full confidence.
func (s *ImportSession) AddManualRow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := Row{
		Quantity:     1,
		Confidence:   1.0,
		IsUserEdited: true,
	}
	row.recomputeAmount()
	s.rows = append(s.rows, row)
	return len(s.rows) - 1
}

var errRowIndex = errors.New("row index out of range")

// UpdateRow applies fn to the row at index under the session lock.
func (s *ImportSession) UpdateRow(index int, fn func(*Row)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.rows) {
		return errRowIndex
	}
	fn(&s.rows[index])
	return nil
}

func (s *ImportSession) RemoveRow(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.rows) {
		return errRowIndex
	}
	s.rows = append(s.rows[:index], s.rows[index+1:]...)
	return nil
}

// RowsTotal sums the derived amounts of all rows.
func (s *ImportSession) RowsTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for i := range s.rows {
		total = total.Add(s.rows[i].Amount)
	}
	return total
}

// TotalsMatch reports whether the reviewed rows add up to the invoice total.
func (s *ImportSession) TotalsMatch() bool {
	return s.RowsTotal().Equal(s.InvoiceTotal())
}

// Submit posts the slip. It refuses while any row is unmatched, and only
// one submission can be in flight at a time; a second call returns ErrBusy
// without touching the network. On success the session empties, ready for
// the next invoice; on failure it stays exactly as it was.
func (s *ImportSession) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	for i := range s.rows {
		if s.rows[i].ProductId == nil {
			s.mu.Unlock()
			return ErrUnresolvedRows
		}
		if s.rows[i].NeedsManualCheck {
			s.mu.Unlock()
			return ErrRowsNeedReview
		}
	}
	if len(s.rows) == 0 {
		s.mu.Unlock()
		return errors.New("nothing to submit")
	}

	req := &ImportSlipRequest{
		SupplierName: s.supplierName,
		Items:        make([]SlipItem, 0, len(s.rows)),
	}
	// the grand total is whatever the reviewed rows add up to, not what
	// the OCR read off the invoice
	total := decimal.Zero
	for i := range s.rows {
		r := &s.rows[i]
		total = total.Add(r.Amount)
		req.Items = append(req.Items, SlipItem{
			ItemName:  r.ItemName,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Amount:    r.Amount,
		})
	}
	req.InvoiceTotal = total
	s.busy = true
	s.mu.Unlock()

	err := s.gateway.SubmitImportSlip(ctx, req)

	s.mu.Lock()
	s.busy = false
	if err == nil {
		s.rows = nil
		s.supplierName = ""
		s.invoiceTotal = decimal.Zero
		s.submitted = true
	}
	s.mu.Unlock()
	return err
}

func (s *ImportSession) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Reset clears the session back to its initial empty state. Calling it
// again is a no-op.
func (s *ImportSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	s.supplierName = ""
	s.invoiceTotal = decimal.Zero
	s.submitted = false
}
