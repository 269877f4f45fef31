package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func TestRowStatus(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want string
	}{
		{"no product", Row{ProductId: nil, Confidence: 0.99}, StatusNew},
		{"no product even when edited", Row{ProductId: nil, IsUserEdited: true, Confidence: 1.0}, StatusNew},
		{"user edited", Row{ProductId: intPtr(1), IsUserEdited: true, Confidence: 0.2}, StatusConfirmed},
		{"high confidence", Row{ProductId: intPtr(1), Confidence: 0.9}, StatusAuto},
		{"exactly at threshold", Row{ProductId: intPtr(1), Confidence: AutoMatchThreshold}, StatusAuto},
		{"below threshold", Row{ProductId: intPtr(1), Confidence: 0.5}, StatusSuggestion},
		{"zero confidence match", Row{ProductId: intPtr(1), Confidence: 0}, StatusSuggestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowAmountDerived(t *testing.T) {
	row := Row{Quantity: 3, UnitPrice: decimal.NewFromInt(1000)}
	row.recomputeAmount()
	if !row.Amount.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("amount = %s, want 3000", row.Amount)
	}

	row.SetQuantity(5)
	if !row.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("after SetQuantity amount = %s, want 5000", row.Amount)
	}
	if !row.IsUserEdited {
		t.Error("SetQuantity should mark the row user-edited")
	}

	row.SetUnitPrice(decimal.NewFromInt(200))
	if !row.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("after SetUnitPrice amount = %s, want 1000", row.Amount)
	}
}

func TestRowSetProduct(t *testing.T) {
	row := Row{ItemName: "mi tom", Quantity: 2, UnitPrice: decimal.NewFromInt(5)}
	row.SetProduct(ProductRef{ID: 7, Name: "Mì Tôm Hảo Hảo"})

	if row.ProductId == nil || *row.ProductId != 7 {
		t.Fatalf("productId = %v, want 7", row.ProductId)
	}
	if row.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", row.Confidence)
	}
	if row.Status() != StatusConfirmed {
		t.Errorf("status = %q, want CONFIRMED", row.Status())
	}

	row.ClearProduct()
	if row.Status() != StatusNew {
		t.Errorf("status after ClearProduct = %q, want NEW", row.Status())
	}
}

func TestRowFromOCRLineDerivesAmount(t *testing.T) {
	// The OCR amount is ignored; the row always derives its own.
	line := OCRLine{
		ItemName:  "Gạo ST25",
		Quantity:  4,
		UnitPrice: decimal.NewFromInt(25000),
		Amount:    decimal.NewFromInt(999), // garbled by OCR
	}
	row := rowFromOCRLine(line)
	if !row.Amount.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("amount = %s, want 100000", row.Amount)
	}
}
