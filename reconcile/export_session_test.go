package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func loadedExportSession(t *testing.T, gw *fakeGateway) *ExportSession {
	t.Helper()
	s := NewExportSession(gw)
	if err := s.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return s
}

func TestAddLineStockGuard(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Gạo ST25", QuantityInStock: 10, StandardPrice: decimal.NewFromInt(25000)}
	gw := &fakeGateway{products: []ProductRef{product}}
	s := loadedExportSession(t, gw)

	// one more than available fails and names the product
	err := s.AddLine(product, 11)
	if err == nil {
		t.Fatal("requesting 11 of 10 should fail")
	}
	if !strings.Contains(err.Error(), "Gạo ST25") || !strings.Contains(err.Error(), "10") {
		t.Errorf("error should name the product and the available stock, got %q", err)
	}

	// exactly the available quantity is fine
	if err := s.AddLine(product, 10); err != nil {
		t.Fatalf("requesting exactly the stock should pass: %v", err)
	}
}

func TestAddLineRejectsDuplicates(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Gạo ST25", QuantityInStock: 100}
	s := loadedExportSession(t, &fakeGateway{products: []ProductRef{product}})

	if err := s.AddLine(product, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLine(product, 3); err == nil {
		t.Fatal("adding the same product twice should fail")
	}
	if len(s.Lines()) != 1 {
		t.Errorf("lines = %d, want 1", len(s.Lines()))
	}
}

func TestSetQuantityBoundedByStock(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Mì Tôm", QuantityInStock: 5}
	s := loadedExportSession(t, &fakeGateway{products: []ProductRef{product}})

	if err := s.AddLine(product, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.SetQuantity(1, 6); err == nil {
		t.Error("raising above stock should fail")
	}
	if err := s.SetQuantity(1, 5); err != nil {
		t.Errorf("raising to exactly the stock should pass: %v", err)
	}
	if err := s.SetQuantity(1, 0); err == nil {
		t.Error("zero quantity should fail")
	}
	if err := s.SetQuantity(99, 1); err == nil {
		t.Error("unknown product should fail")
	}
}

func TestExportSearchUsesCatalog(t *testing.T) {
	s := loadedExportSession(t, &fakeGateway{products: []ProductRef{
		{ID: 1, Name: "Quản Lý Tổng"},
		{ID: 2, Name: "Gạo ST25"},
	}})

	got := s.Search("quan ly")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("Search(\"quan ly\") = %+v", got)
	}
}

func TestExportSubmitPayload(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Gạo ST25", QuantityInStock: 10, StandardPrice: decimal.NewFromInt(25000)}
	gw := &fakeGateway{products: []ProductRef{product}}
	s := loadedExportSession(t, gw)

	s.SetReceiver("Kho B")
	if err := s.AddLine(product, 4); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	req := gw.lastExportReq
	if req.ReceiverName != "Kho B" {
		t.Errorf("receiver = %q", req.ReceiverName)
	}
	if len(req.Items) != 1 {
		t.Fatalf("items = %d", len(req.Items))
	}
	if req.Items[0].ProductId != 1 || req.Items[0].Quantity != 4 {
		t.Errorf("item = %+v, want product 1 quantity 4", req.Items[0])
	}
}

func TestExportSubmitClearsSessionOnSuccess(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Gạo ST25", QuantityInStock: 10}
	gw := &fakeGateway{products: []ProductRef{product}}
	s := loadedExportSession(t, gw)

	s.SetReceiver("Kho B")
	if err := s.AddLine(product, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(s.Lines()) != 0 {
		t.Errorf("lines = %d, want 0 after a confirmed submit", len(s.Lines()))
	}

	// the receiver cleared too: the next slip starts blank
	if err := s.AddLine(product, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gw.lastExportReq.ReceiverName != "" {
		t.Errorf("receiver = %q, want cleared between slips", gw.lastExportReq.ReceiverName)
	}
}

func TestExportSubmitKeepsLinesOnFailure(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Gạo ST25", QuantityInStock: 10}
	gw := &fakeGateway{
		products:  []ProductRef{product},
		exportErr: errors.New("backend down"),
	}
	s := loadedExportSession(t, gw)

	if err := s.AddLine(product, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(context.Background()); err == nil {
		t.Fatal("submit should surface the gateway error")
	}
	if len(s.Lines()) != 1 {
		t.Error("a failed submit must keep the picked lines")
	}
}

func TestExportSubmitRechecksStockAfterCatalogReload(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Gạo ST25", QuantityInStock: 10}
	gw := &fakeGateway{products: []ProductRef{product}}
	s := loadedExportSession(t, gw)

	if err := s.AddLine(product, 5); err != nil {
		t.Fatal(err)
	}

	// another slip drained the product; a reload brings the news
	gw.products = []ProductRef{{ID: 1, Name: "Gạo ST25", QuantityInStock: 2}}
	if err := s.LoadCatalog(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := s.Submit(context.Background())
	if err == nil {
		t.Fatal("submit should fail against the fresher stock")
	}
	if !strings.Contains(err.Error(), "Gạo ST25") || !strings.Contains(err.Error(), "2") {
		t.Errorf("error should name the product and the available stock, got %q", err)
	}
	if gw.exportCalls != 0 {
		t.Error("a blocked submit must not reach the gateway")
	}
}

func TestExportSubmitEmpty(t *testing.T) {
	gw := &fakeGateway{}
	s := NewExportSession(gw)
	if err := s.Submit(context.Background()); err == nil {
		t.Fatal("empty submit should fail")
	}
	if gw.exportCalls != 0 {
		t.Error("empty submit must not reach the gateway")
	}
}

func TestExportResetKeepsCatalog(t *testing.T) {
	product := ProductRef{ID: 1, Name: "Gạo ST25", QuantityInStock: 10}
	s := loadedExportSession(t, &fakeGateway{products: []ProductRef{product}})

	if err := s.AddLine(product, 1); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if len(s.Lines()) != 0 {
		t.Error("Reset should drop picked lines")
	}
	if got := s.Search(""); len(got) != 1 {
		t.Error("Reset should keep the loaded catalog")
	}
	s.Reset()
}
