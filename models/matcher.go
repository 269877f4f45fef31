package models

import (
	"context"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
	"github.com/shopspring/decimal"
)

// Matching thresholds for OCR line items against the catalog. Dice on the
// normalized names is the primary signal, token overlap rescues reordered
// names ("mi hao hao" vs "hao hao mi tom").
const (
	matchDiceFloor  = 0.4
	matchTokenFloor = 0.5
)

// RawLine is one line item as the OCR service extracted it.
type RawLine struct {
	ItemName  string          `json:"itemName"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
}

// RawLineGuess is a RawLine annotated with the catalog match, if any.
type RawLineGuess struct {
	RawLine
	ProductId        *int    `json:"productId"`
	ProductName      string  `json:"productName,omitempty"`
	Confidence       float64 `json:"confidence"`
	NeedsManualCheck bool    `json:"needsManualCheck"`
}

type productIndexEntry struct {
	product    *Product
	normalized string
	tokens     []string
}

// MatchInvoiceLines resolves OCR line items to catalog products. Each line
// gets the best-scoring product above the floor, or no match at all; a line
// whose quantity times unit price disagrees with its amount is flagged for
// manual review regardless of the name match.
func MatchInvoiceLines(ctx context.Context, lines []RawLine) ([]RawLineGuess, error) {
	products, err := GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	index := make([]productIndexEntry, 0, len(products))
	for _, p := range products {
		if p.IsActive != nil && !*p.IsActive {
			continue
		}
		index = append(index, productIndexEntry{
			product:    p,
			normalized: utils.NormalizeSearch(p.Name),
			tokens:     utils.Tokenize(p.Name),
		})
	}

	guesses := make([]RawLineGuess, 0, len(lines))
	for _, line := range lines {
		guess := RawLineGuess{RawLine: line}

		normalized := utils.NormalizeSearch(line.ItemName)
		tokens := utils.Tokenize(line.ItemName)

		var best *productIndexEntry
		var bestScore float64
		for i := range index {
			entry := &index[i]
			score := utils.DiceCoefficient(normalized, entry.normalized)
			if overlap := tokenOverlap(tokens, entry.tokens); overlap > score {
				score = overlap
			}
			if score > bestScore {
				bestScore = score
				best = entry
			}
		}

		if best != nil && bestScore >= matchDiceFloor {
			id := best.product.ID
			guess.ProductId = &id
			guess.ProductName = best.product.Name
			guess.Confidence = bestScore
		}

		expected := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if line.Quantity <= 0 || !expected.Equal(line.Amount) {
			guess.NeedsManualCheck = true
		}

		guesses = append(guesses, guess)
	}
	return guesses, nil
}

// tokenOverlap is the share of query tokens found in the candidate.
func tokenOverlap(query []string, candidate []string) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}
	set := make(map[string]bool, len(candidate))
	for _, t := range candidate {
		set[t] = true
	}
	hits := 0
	for _, t := range query {
		if set[t] {
			hits++
		}
	}
	overlap := float64(hits) / float64(len(query))
	if overlap < matchTokenFloor {
		return 0
	}
	return overlap
}
