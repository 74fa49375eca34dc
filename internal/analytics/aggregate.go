package analytics

import (
	"math"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// StatusCounts tallies resolved statuses over the in-scope population.
// The four buckets always sum to the total count of in-scope controls.
type StatusCounts struct {
	Compliant    int
	Partial      int
	NotCompliant int
	Unknown      int
}

// Total is the in-scope control count.
func (c StatusCounts) Total() int {
	return c.Compliant + c.Partial + c.NotCompliant + c.Unknown
}

func countStatuses(records map[string]ControlStatusRecord) StatusCounts {
	var counts StatusCounts
	for _, rec := range records {
		switch rec.Status {
		case catalog.StatusCompliant:
			counts.Compliant++
		case catalog.StatusPartial:
			counts.Partial++
		case catalog.StatusNotCompliant:
			counts.NotCompliant++
		default:
			counts.Unknown++
		}
	}
	return counts
}

// coveragePercent is the weighted coverage formula: partial controls earn
// credit at weight w. Returns 0 for an empty population, never a fault.
func coveragePercent(counts StatusCounts, w float64) int {
	total := counts.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * (float64(counts.Compliant) + w*float64(counts.Partial)) / float64(total)))
}

// percentOf is a simple rounded percentage, zero-guarded. Breakdown
// percentages are independently rounded and may not sum exactly to 100;
// that is accepted, not corrected.
func percentOf(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
