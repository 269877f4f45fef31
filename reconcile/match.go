package reconcile

import (
	"strings"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

// MatchCandidates filters the catalog to products whose folded name or
// SKU contains the folded query. Accents and case never matter: "quan ly"
// finds "Quản Lý Tổng". An empty query returns every candidate so the
// picker can show the full list.
func MatchCandidates(query string, candidates []ProductRef) []ProductRef {
	normalized := utils.NormalizeSearch(query)
	if normalized == "" {
		out := make([]ProductRef, len(candidates))
		copy(out, candidates)
		return out
	}

	var out []ProductRef
	for _, c := range candidates {
		if strings.Contains(utils.NormalizeSearch(c.Name), normalized) {
			out = append(out, c)
			continue
		}
		if c.Sku != "" && strings.Contains(utils.NormalizeSearch(c.Sku), normalized) {
			out = append(out, c)
		}
	}
	return out
}
