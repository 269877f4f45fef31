package models

import "testing"

func TestLooksLikeSelect(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"SELECT name FROM products", true},
		{"```sql\nselect 1\n```", true},
		{"  SELECT 1", true},
		{"There are 12 products below the reorder threshold.", false},
		{"I cannot answer that from the warehouse tables.", false},
	}
	for _, tt := range tests {
		if got := looksLikeSelect(tt.in); got != tt.want {
			t.Errorf("looksLikeSelect(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeSelect(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "plain select",
			in:   "SELECT name FROM products LIMIT 10",
			want: "SELECT name FROM products LIMIT 10",
		},
		{
			name: "fenced select",
			in:   "```sql\nSELECT name FROM products\n```",
			want: "SELECT name FROM products",
		},
		{
			name: "trailing semicolon stripped",
			in:   "SELECT 1;",
			want: "SELECT 1",
		},
		{
			name: "timestamp columns pass",
			in:   "SELECT name, updated_at, created_at FROM products",
			want: "SELECT name, updated_at, created_at FROM products",
		},
		{
			name:    "delete rejected",
			in:      "DELETE FROM products",
			wantErr: true,
		},
		{
			name:    "multiple statements rejected",
			in:      "SELECT 1; DROP TABLE products",
			wantErr: true,
		},
		{
			name:    "update buried in select rejected",
			in:      "SELECT 1 WHERE EXISTS (UPDATE products SET name = 'x')",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeSelect(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("sanitizeSelect(%q) accepted, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeSelect(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("sanitizeSelect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
