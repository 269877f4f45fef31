package utils

import "testing"

func TestNormalizeSearch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Quản Lý Tổng", "quan ly tong"},
		{"quan ly", "quan ly"},
		{"GẠO ST25", "gao st25"},
		{"Đường kính  trắng", "duong kinh trang"},
		{"Mì tôm (thùng)", "mi tom thung"},
		{"  ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSearch(tt.in); got != tt.want {
			t.Errorf("NormalizeSearch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Mì Tôm Hảo Hảo 5g")
	want := []string{"mi", "tom", "hao", "hao", "5g"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiceCoefficient(t *testing.T) {
	if got := DiceCoefficient("gao st25", "gao st25"); got != 1 {
		t.Errorf("identical strings = %v, want 1", got)
	}
	if got := DiceCoefficient("abc", "xyz"); got != 0 {
		t.Errorf("disjoint strings = %v, want 0", got)
	}
	if got := DiceCoefficient("", "abc"); got != 0 {
		t.Errorf("empty string = %v, want 0", got)
	}
	near := DiceCoefficient("gao st25", "gao st 25")
	far := DiceCoefficient("gao st25", "nuoc mam")
	if near <= far {
		t.Errorf("near = %v should beat far = %v", near, far)
	}
}
