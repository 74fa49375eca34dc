package analytics

import "testing"

func TestCoveragePercent(t *testing.T) {
	tests := []struct {
		name   string
		counts StatusCounts
		want   int
	}{
		// 6 compliant + 2 partial at weight 0.6 over 10 controls.
		{"weighted partial credit", StatusCounts{Compliant: 6, Partial: 2, NotCompliant: 2}, 72},
		{"all compliant", StatusCounts{Compliant: 4}, 100},
		{"none compliant", StatusCounts{NotCompliant: 3, Unknown: 2}, 0},
		{"empty population", StatusCounts{}, 0},
		{"single partial", StatusCounts{Partial: 1}, 60},
		{"rounding up", StatusCounts{Compliant: 1, Partial: 1, Unknown: 1}, 53},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coveragePercent(tt.counts, 0.6); got != tt.want {
				t.Errorf("coveragePercent(%+v) = %d, want %d", tt.counts, got, tt.want)
			}
		})
	}
}

func TestCoveragePercentBounds(t *testing.T) {
	cases := []StatusCounts{
		{Compliant: 100},
		{Partial: 100},
		{NotCompliant: 100},
		{Compliant: 1, Partial: 1, NotCompliant: 1, Unknown: 1},
	}
	for _, counts := range cases {
		got := coveragePercent(counts, 0.6)
		if got < 0 || got > 100 {
			t.Errorf("coveragePercent(%+v) = %d, out of [0,100]", counts, got)
		}
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := percentOf(tt.part, tt.total); got != tt.want {
			t.Errorf("percentOf(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
		}
	}
}
