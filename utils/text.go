package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFD and drops the combining marks, so
// "Quản Lý" and "Quan Ly" fold to the same bytes.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSearch lowercases, strips Vietnamese diacritics and keeps only
// letters, digits and single spaces. Must be applied to BOTH the query and
// the candidate before comparing, otherwise unaccented input misses
// accented catalog entries.
func NormalizeSearch(input string) string {
	s := strings.ToLower(input)
	folded, _, err := transform.String(foldTransformer, s)
	if err == nil {
		s = folded
	}
	// NFD cannot decompose đ; it is a distinct letter.
	s = strings.ReplaceAll(s, "đ", "d")

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits a normalized string into tokens of at least 2 runes.
func Tokenize(input string) []string {
	parts := strings.Split(NormalizeSearch(input), " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// DiceCoefficient scores bigram overlap between two strings in [0, 1].
func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}
