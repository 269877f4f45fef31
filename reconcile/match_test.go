package reconcile

import "testing"

func TestMatchCandidatesAccentInsensitive(t *testing.T) {
	catalog := []ProductRef{
		{ID: 1, Name: "Quản Lý Tổng"},
		{ID: 2, Name: "Gạo ST25"},
		{ID: 3, Name: "Mì Tôm Hảo Hảo"},
	}

	tests := []struct {
		query   string
		wantIds []int
	}{
		{"quan ly", []int{1}},
		{"QUAN LY", []int{1}},
		{"gạo", []int{2}},
		{"gao", []int{2}},
		{"hao hao", []int{3}},
		{"xyz", nil},
		{"", []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := MatchCandidates(tt.query, catalog)
			if len(got) != len(tt.wantIds) {
				t.Fatalf("MatchCandidates(%q) returned %d results, want %d", tt.query, len(got), len(tt.wantIds))
			}
			for i, id := range tt.wantIds {
				if got[i].ID != id {
					t.Errorf("result[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestMatchCandidatesBySku(t *testing.T) {
	catalog := []ProductRef{
		{ID: 1, Name: "Gạo ST25", Sku: "GAO-ST25"},
		{ID: 2, Name: "Mì Tôm Hảo Hảo", Sku: "MI-HH"},
	}

	got := MatchCandidates("st25", catalog)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("MatchCandidates(\"st25\") = %+v, want product 1 by SKU", got)
	}
	// a hit on both name and SKU is still one result
	got = MatchCandidates("gao", catalog)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("MatchCandidates(\"gao\") = %+v, want a single product 1", got)
	}
}

func TestMatchCandidatesDoesNotMutateInput(t *testing.T) {
	catalog := []ProductRef{{ID: 1, Name: "A"}}
	out := MatchCandidates("", catalog)
	out[0].Name = "changed"
	if catalog[0].Name != "A" {
		t.Error("MatchCandidates must copy, not alias, the input slice")
	}
}
