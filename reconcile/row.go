package reconcile

import "github.com/shopspring/decimal"

// Row review statuses, strongest first.
const (
	StatusNew        = "NEW"        // no product yet, needs a manual pick
	StatusConfirmed  = "CONFIRMED"  // a user touched this row
	StatusAuto       = "AUTO"       // matched with high confidence
	StatusSuggestion = "SUGGESTION" // matched, but worth a look
)

// AutoMatchThreshold separates AUTO matches from SUGGESTION ones.
const AutoMatchThreshold = 0.85

// Row is one reviewable invoice line. Amount is always derived from
// quantity and unit price; it is never set directly.
type Row struct {
	ItemName     string
	Quantity     int
	UnitPrice    decimal.Decimal
	Amount       decimal.Decimal
	ProductId    *int
	ProductName  string
	Confidence   float64
	IsUserEdited bool
	// NeedsManualCheck flags OCR lines whose numbers disagreed. A user
	// edit rederives the amount and clears the flag.
	NeedsManualCheck bool
}

// Status derives the review state. The order is strict: a missing product
// always wins, then a user edit, then the confidence split.
func (r *Row) Status() string {
	switch {
	case r.ProductId == nil:
		return StatusNew
	case r.IsUserEdited:
		return StatusConfirmed
	case r.Confidence >= AutoMatchThreshold:
		return StatusAuto
	default:
		return StatusSuggestion
	}
}

func (r *Row) recomputeAmount() {
	r.Amount = r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// SetQuantity marks the row user-edited and rederives the amount.
func (r *Row) SetQuantity(quantity int) {
	r.Quantity = quantity
	r.IsUserEdited = true
	r.NeedsManualCheck = false
	r.recomputeAmount()
}

// SetUnitPrice marks the row user-edited and rederives the amount.
func (r *Row) SetUnitPrice(unitPrice decimal.Decimal) {
	r.UnitPrice = unitPrice
	r.IsUserEdited = true
	r.NeedsManualCheck = false
	r.recomputeAmount()
}

// SetItemName renames the line without touching product or numbers.
func (r *Row) SetItemName(name string) {
	r.ItemName = name
	r.IsUserEdited = true
}

// SetProduct resolves the row to a catalog product. A manual pick is a
// user edit with full confidence.
func (r *Row) SetProduct(product ProductRef) {
	id := product.ID
	r.ProductId = &id
	r.ProductName = product.Name
	r.Confidence = 1.0
	r.IsUserEdited = true
}

// ClearProduct drops the match, sending the row back to NEW.
func (r *Row) ClearProduct() {
	r.ProductId = nil
	r.ProductName = ""
	r.Confidence = 0
	r.IsUserEdited = true
}

func rowFromOCRLine(line OCRLine) Row {
	row := Row{
		ItemName:         line.ItemName,
		Quantity:         line.Quantity,
		UnitPrice:        line.UnitPrice,
		ProductId:        line.ProductId,
		ProductName:      line.ProductName,
		Confidence:       line.Confidence,
		NeedsManualCheck: line.NeedsManualCheck,
	}
	row.recomputeAmount()
	return row
}
