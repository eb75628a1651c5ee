package core

import "testing"

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"product-2", "product-10", -1},
		{"product-10", "product-2", 1},
		{"product-1", "product-1", 0},
		{"a", "b", -1},
		{"item-002", "item-2", -1},
		// Case does not split the collection: digits decide first.
		{"product-2", "Product-3", -1},
		{"Product-3", "product-10", -1},
	}
	for _, tt := range tests {
		got := CompareIDs(tt.a, tt.b)
		if sign(got) != tt.want {
			t.Errorf("CompareIDs(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
