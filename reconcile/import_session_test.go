package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeGateway counts calls and can block or fail on demand.
type fakeGateway struct {
	mu            sync.Mutex
	uploadResult  *OCRResult
	products      []ProductRef
	importCalls   int
	exportCalls   int
	importErr     error
	exportErr     error
	lastImportReq *ImportSlipRequest
	lastExportReq *ExportSlipRequest
	block         chan struct{}
}

func (f *fakeGateway) UploadInvoice(ctx context.Context, filename string, content []byte) (*OCRResult, error) {
	if f.uploadResult == nil {
		return &OCRResult{}, nil
	}
	return f.uploadResult, nil
}

func (f *fakeGateway) FetchProducts(ctx context.Context) ([]ProductRef, error) {
	return f.products, nil
}

func (f *fakeGateway) SubmitImportSlip(ctx context.Context, req *ImportSlipRequest) error {
	f.mu.Lock()
	f.importCalls++
	f.lastImportReq = req
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.importErr
}

func (f *fakeGateway) SubmitExportSlip(ctx context.Context, req *ExportSlipRequest) error {
	f.mu.Lock()
	f.exportCalls++
	f.lastExportReq = req
	f.mu.Unlock()
	return f.exportErr
}

func (f *fakeGateway) importCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.importCalls
}

func loadedImportSession(t *testing.T, gw *fakeGateway) *ImportSession {
	t.Helper()
	s := NewImportSession(gw)
	if err := s.LoadInvoice(context.Background(), "invoice.jpg", []byte("img")); err != nil {
		t.Fatalf("LoadInvoice: %v", err)
	}
	return s
}

func TestLoadInvoicePopulatesRows(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		SupplierName: "Công Ty TNHH ABC",
		InvoiceTotal: decimal.NewFromInt(110000),
		Lines: []OCRLine{
			{ItemName: "Gạo ST25", Quantity: 4, UnitPrice: decimal.NewFromInt(25000), ProductId: intPtr(2), Confidence: 0.93},
			{ItemName: "Mì tôm", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), Confidence: 0},
		},
	}}
	s := loadedImportSession(t, gw)

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Status() != StatusAuto {
		t.Errorf("row 0 status = %q, want AUTO", rows[0].Status())
	}
	if rows[1].Status() != StatusNew {
		t.Errorf("row 1 status = %q, want NEW", rows[1].Status())
	}
	if s.SupplierName() != "Công Ty TNHH ABC" {
		t.Errorf("supplier = %q", s.SupplierName())
	}
}

func TestAddManualRowStartsNew(t *testing.T) {
	s := NewImportSession(&fakeGateway{})
	idx := s.AddManualRow()

	rows := s.Rows()
	if rows[idx].Status() != StatusNew {
		t.Fatalf("manual row status = %q, want NEW", rows[idx].Status())
	}
	if rows[idx].Confidence != 1.0 || !rows[idx].IsUserEdited {
		t.Error("manual row must carry confidence 1.0 and count as user input")
	}

	// picking a product moves it straight to CONFIRMED
	if err := s.UpdateRow(idx, func(r *Row) {
		r.SetProduct(ProductRef{ID: 9, Name: "Nước Mắm"})
	}); err != nil {
		t.Fatal(err)
	}
	if got := s.Rows()[idx].Status(); got != StatusConfirmed {
		t.Errorf("status after pick = %q, want CONFIRMED", got)
	}
}

func TestSubmitBlockedWhileRowsUnresolved(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		Lines: []OCRLine{
			{ItemName: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(10), ProductId: intPtr(1), Confidence: 0.9},
			{ItemName: "B", Quantity: 1, UnitPrice: decimal.NewFromInt(20)},
		},
	}}
	s := loadedImportSession(t, gw)

	err := s.Submit(context.Background())
	if !errors.Is(err, ErrUnresolvedRows) {
		t.Fatalf("Submit = %v, want ErrUnresolvedRows", err)
	}
	if gw.importCallCount() != 0 {
		t.Fatal("a blocked submit must not touch the network")
	}

	// resolve the second row and submit for real
	if err := s.UpdateRow(1, func(r *Row) {
		r.SetProduct(ProductRef{ID: 2, Name: "B"})
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit after resolving: %v", err)
	}
	if gw.importCallCount() != 1 {
		t.Errorf("import calls = %d, want 1", gw.importCallCount())
	}
}

func TestSubmitBlockedWhileRowsNeedReview(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		Lines: []OCRLine{
			// OCR arithmetic disagreed, so the line arrived flagged
			{ItemName: "A", Quantity: 2, UnitPrice: decimal.NewFromInt(10), ProductId: intPtr(1), Confidence: 0.9, NeedsManualCheck: true},
		},
	}}
	s := loadedImportSession(t, gw)

	err := s.Submit(context.Background())
	if !errors.Is(err, ErrRowsNeedReview) {
		t.Fatalf("Submit = %v, want ErrRowsNeedReview", err)
	}
	if gw.importCallCount() != 0 {
		t.Fatal("a blocked submit must not touch the network")
	}

	// any quantity or price edit counts as review
	if err := s.UpdateRow(0, func(r *Row) { r.SetQuantity(2) }); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit after review: %v", err)
	}
}

func TestSubmitSingleInFlight(t *testing.T) {
	gw := &fakeGateway{
		uploadResult: &OCRResult{Lines: []OCRLine{
			{ItemName: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(10), ProductId: intPtr(1), Confidence: 0.9},
		}},
		block: make(chan struct{}),
	}
	s := loadedImportSession(t, gw)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- s.Submit(context.Background())
	}()
	<-started
	// wait until the first submit reaches the gateway
	deadline := time.Now().Add(2 * time.Second)
	for gw.importCallCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first submit never reached the gateway")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Submit = %v, want ErrBusy", err)
	}
	if gw.importCallCount() != 1 {
		t.Fatalf("import calls = %d, want 1 while first is in flight", gw.importCallCount())
	}

	close(gw.block)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if !s.Submitted() {
		t.Error("session should be marked submitted")
	}
}

func TestSubmitPayloadShape(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		SupplierName: "ABC",
		InvoiceTotal: decimal.NewFromInt(100000),
		Lines: []OCRLine{
			{ItemName: "Gạo ST25", Quantity: 4, UnitPrice: decimal.NewFromInt(25000), ProductId: intPtr(2), Confidence: 0.93},
		},
	}}
	s := loadedImportSession(t, gw)
	if err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	req := gw.lastImportReq
	if req.SupplierName != "ABC" {
		t.Errorf("supplier = %q", req.SupplierName)
	}
	if !req.InvoiceTotal.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("invoice total = %s", req.InvoiceTotal)
	}
	if len(req.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(req.Items))
	}
	item := req.Items[0]
	if item.ItemName != "Gạo ST25" || item.Quantity != 4 {
		t.Errorf("item = %+v", item)
	}
	if !item.Amount.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("item amount = %s, want 100000", item.Amount)
	}
}

func TestSubmitSendsEditedRowTotal(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		SupplierName: "ABC",
		InvoiceTotal: decimal.NewFromInt(100000),
		Lines: []OCRLine{
			{ItemName: "Gạo ST25", Quantity: 4, UnitPrice: decimal.NewFromInt(25000), ProductId: intPtr(2), Confidence: 0.93},
		},
	}}
	s := loadedImportSession(t, gw)

	// 4 → 3 bags; the grand total must follow the rows, not the OCR reading
	if err := s.UpdateRow(0, func(r *Row) { r.SetQuantity(3) }); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := decimal.NewFromInt(75000)
	if !gw.lastImportReq.InvoiceTotal.Equal(want) {
		t.Errorf("submitted total = %s, want %s (sum of row amounts)", gw.lastImportReq.InvoiceTotal, want)
	}
	if !gw.lastImportReq.Items[0].Amount.Equal(want) {
		t.Errorf("item amount = %s, want %s", gw.lastImportReq.Items[0].Amount, want)
	}
}

func TestSubmitClearsSessionOnSuccess(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		SupplierName: "ABC",
		Lines: []OCRLine{
			{ItemName: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(10), ProductId: intPtr(1), Confidence: 0.9},
		},
	}}
	s := loadedImportSession(t, gw)

	if err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(s.Rows()) != 0 {
		t.Errorf("rows = %d, want 0 after a confirmed submit", len(s.Rows()))
	}
	if s.SupplierName() != "" {
		t.Errorf("supplier = %q, want cleared", s.SupplierName())
	}
	if !s.InvoiceTotal().IsZero() {
		t.Errorf("invoice total = %s, want zero", s.InvoiceTotal())
	}
	if !s.Submitted() {
		t.Error("session should be marked submitted")
	}
}

func TestSubmitKeepsStateOnFailure(t *testing.T) {
	gw := &fakeGateway{
		uploadResult: &OCRResult{
			SupplierName: "ABC",
			Lines: []OCRLine{
				{ItemName: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(10), ProductId: intPtr(1), Confidence: 0.9},
			},
		},
		importErr: errors.New("backend down"),
	}
	s := loadedImportSession(t, gw)

	if err := s.Submit(context.Background()); err == nil {
		t.Fatal("submit should surface the gateway error")
	}
	if len(s.Rows()) != 1 || s.SupplierName() != "ABC" {
		t.Error("a failed submit must leave the session untouched")
	}
	if s.Submitted() {
		t.Error("session must not be marked submitted")
	}

	// retry works once the backend recovers
	gw.importErr = nil
	if err := s.Submit(context.Background()); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestTotalsMatch(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		InvoiceTotal: decimal.NewFromInt(110000),
		Lines: []OCRLine{
			{ItemName: "A", Quantity: 4, UnitPrice: decimal.NewFromInt(25000), ProductId: intPtr(1), Confidence: 0.9},
			{ItemName: "B", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), ProductId: intPtr(2), Confidence: 0.9},
		},
	}}
	s := loadedImportSession(t, gw)

	if !s.TotalsMatch() {
		t.Fatalf("RowsTotal = %s should equal invoice total", s.RowsTotal())
	}

	// editing a quantity breaks the match until the total is accounted for
	if err := s.UpdateRow(1, func(r *Row) { r.SetQuantity(3) }); err != nil {
		t.Fatal(err)
	}
	if s.TotalsMatch() {
		t.Error("totals should disagree after the edit")
	}
}

func TestResetIdempotent(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{
		SupplierName: "ABC",
		Lines:        []OCRLine{{ItemName: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	}}
	s := loadedImportSession(t, gw)

	s.Reset()
	if len(s.Rows()) != 0 || s.SupplierName() != "" {
		t.Fatal("Reset should clear the session")
	}
	// a second reset is a no-op, not a panic
	s.Reset()
	if len(s.Rows()) != 0 {
		t.Fatal("second Reset changed state")
	}
}

func TestRemoveRow(t *testing.T) {
	gw := &fakeGateway{uploadResult: &OCRResult{Lines: []OCRLine{
		{ItemName: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		{ItemName: "B", Quantity: 1, UnitPrice: decimal.NewFromInt(2)},
	}}}
	s := loadedImportSession(t, gw)

	if err := s.RemoveRow(0); err != nil {
		t.Fatal(err)
	}
	rows := s.Rows()
	if len(rows) != 1 || rows[0].ItemName != "B" {
		t.Fatalf("rows after remove = %+v", rows)
	}
	if err := s.RemoveRow(5); err == nil {
		t.Error("out-of-range remove should fail")
	}
}
