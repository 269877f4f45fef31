package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// ExportLine is one product picked for outbound shipment.
type ExportLine struct {
	Product  ProductRef
	Quantity int
}

func (l ExportLine) Amount() decimal.Decimal {
	return l.Product.StandardPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ExportSession builds an export slip from catalog picks. Stock is checked
// at selection time with the snapshot the session was loaded with; the
// server re-checks at posting time.
type ExportSession struct {
	gateway Gateway

	mu       sync.Mutex
	catalog  []ProductRef
	lines    []ExportLine
	receiver string
	busy     bool
}

func NewExportSession(gateway Gateway) *ExportSession {
	return &ExportSession{gateway: gateway}
}

// LoadCatalog fetches the product snapshot the picker searches over.
func (s *ExportSession) LoadCatalog(ctx context.Context) error {
	products, err := s.gateway.FetchProducts(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = products
	return nil
}

// Search filters the loaded catalog, accent- and case-insensitively.
func (s *ExportSession) Search(query string) []ProductRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MatchCandidates(query, s.catalog)
}

func (s *ExportSession) SetReceiver(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiver = name
}

// AddLine picks a product. The same product cannot be added twice; adjust
// the existing line instead.
func (s *ExportSession) AddLine(product ProductRef, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.lines {
		if line.Product.ID == product.ID {
			return fmt.Errorf("%q is already on the slip", product.Name)
		}
	}
	if quantity > product.QuantityInStock {
		return fmt.Errorf("%q has only %d in stock, requested %d",
			product.Name, product.QuantityInStock, quantity)
	}
	s.lines = append(s.lines, ExportLine{Product: product, Quantity: quantity})
	return nil
}

// SetQuantity adjusts a picked line, still bounded by the stock snapshot.
func (s *ExportSession) SetQuantity(productId int, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].Product.ID != productId {
			continue
		}
		if quantity > s.lines[i].Product.QuantityInStock {
			return fmt.Errorf("%q has only %d in stock, requested %d",
				s.lines[i].Product.Name, s.lines[i].Product.QuantityInStock, quantity)
		}
		s.lines[i].Quantity = quantity
		return nil
	}
	return errors.New("product is not on the slip")
}

func (s *ExportSession) RemoveLine(productId int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].Product.ID == productId {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a snapshot of the picked lines.
func (s *ExportSession) Lines() []ExportLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ExportLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Submit posts the export slip; one in-flight submission at a time. Every
// line is re-checked against the stock snapshot first, so a catalog reload
// after picking still catches a drained product. On success the picked
// lines and receiver clear; on failure nothing changes.
func (s *ExportSession) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return errors.New("nothing to submit")
	}
	for _, line := range s.lines {
		stock := line.Product.QuantityInStock
		for _, p := range s.catalog {
			if p.ID == line.Product.ID {
				stock = p.QuantityInStock
				break
			}
		}
		if line.Quantity > stock {
			s.mu.Unlock()
			return fmt.Errorf("%q has only %d in stock, requested %d",
				line.Product.Name, stock, line.Quantity)
		}
	}

	req := &ExportSlipRequest{
		ReceiverName: s.receiver,
		Items:        make([]ExportItem, 0, len(s.lines)),
	}
	for _, line := range s.lines {
		req.Items = append(req.Items, ExportItem{
			ProductId: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	s.busy = true
	s.mu.Unlock()

	err := s.gateway.SubmitExportSlip(ctx, req)

	s.mu.Lock()
	s.busy = false
	if err == nil {
		s.lines = nil
		s.receiver = ""
	}
	s.mu.Unlock()
	return err
}

// Reset clears the picked lines but keeps the loaded catalog.
func (s *ExportSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.receiver = ""
}
