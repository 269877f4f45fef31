package models

import "testing"

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		name      string
		query     []string
		candidate []string
		want      float64
	}{
		{"full overlap", []string{"mi", "tom"}, []string{"tom", "mi", "hao"}, 1.0},
		{"half overlap below floor", []string{"mi", "xx", "yy", "zz"}, []string{"mi"}, 0},
		{"exact floor", []string{"mi", "xx"}, []string{"mi"}, 0.5},
		{"no overlap", []string{"aa"}, []string{"bb"}, 0},
		{"empty query", nil, []string{"bb"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenOverlap(tt.query, tt.candidate); got != tt.want {
				t.Errorf("tokenOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStockLabel(t *testing.T) {
	if got := stockLabel(0); got != "Out of Stock" {
		t.Errorf("stockLabel(0) = %q", got)
	}
	if got := stockLabel(3); got != "Low Stock (3 left)" {
		t.Errorf("stockLabel(3) = %q", got)
	}
}
