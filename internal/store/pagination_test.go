package store

import (
	"strings"
	"testing"
)

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{2, 50, 2, 50},
		{1, 500, 1, 20},
	}

	for _, tc := range cases {
		page, pageSize := ClampPage(tc.page, tc.pageSize)
		if page != tc.wantPage || pageSize != tc.wantPageSize {
			t.Errorf("ClampPage(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.pageSize, page, pageSize, tc.wantPage, tc.wantPageSize)
		}
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	a := GenerateOrderNumber()
	b := GenerateOrderNumber()

	if !strings.HasPrefix(a, "ORD-") {
		t.Errorf("Expected ORD- prefix, got %q", a)
	}
	if a == b {
		t.Errorf("Consecutive order numbers should differ, both %q", a)
	}
	if parts := strings.Split(a, "-"); len(parts) != 3 {
		t.Errorf("Expected three dash-separated segments, got %q", a)
	}
}

func TestGenerateCouponCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := GenerateCouponCode()
		if len(code) != 8 {
			t.Fatalf("Expected 8-character code, got %q", code)
		}
		for _, r := range code {
			if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
				t.Fatalf("Expected upper-case alphanumerics, got %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("Codes should vary across generations")
	}
}
