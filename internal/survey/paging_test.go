package survey

import "testing"

func TestPaginationMath(t *testing.T) {
	cases := []struct {
		name      string
		total     int64
		size      int
		wantLimit int64
		wantPages int
	}{
		{"partial last page", 97, 25, 25, 4},
		{"empty result", 0, 25, 25, 0},
		{"unlimited", 97, 0, 97, 1},
		{"unlimited empty", 0, 0, 0, 0},
		{"exact fit", 100, 25, 25, 4},
		{"single oversized page", 10, 50, 50, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limit := EffectiveLimit(tc.size, tc.total)
			if limit != tc.wantLimit {
				t.Fatalf("EffectiveLimit(%d, %d) = %d, want %d", tc.size, tc.total, limit, tc.wantLimit)
			}
			if pages := Pages(tc.total, limit); pages != tc.wantPages {
				t.Fatalf("Pages(%d, %d) = %d, want %d", tc.total, limit, pages, tc.wantPages)
			}
		})
	}
}

func TestNormalizePage(t *testing.T) {
	if NormalizePage(0) != 1 || NormalizePage(-3) != 1 || NormalizePage(7) != 7 {
		t.Fatalf("NormalizePage broken")
	}
}
