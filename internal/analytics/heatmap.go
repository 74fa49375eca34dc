package analytics

import (
	"sort"
	"time"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// Risk exposure buckets.
const (
	ExposureHigh   = "high"
	ExposureMedium = "medium"
	ExposureLow    = "low"
)

// impactLevel maps a resolved status to an impact level 1-3. UNKNOWN is
// treated as moderate impact, not low.
func impactLevel(status catalog.Status) int {
	switch status {
	case catalog.StatusNotCompliant:
		return 3
	case catalog.StatusPartial, catalog.StatusUnknown:
		return 2
	default:
		return 1
	}
}

// likelihoodLevel maps evidence freshness to a likelihood level 1-3. A
// control with no evidence timestamp sits in the middle.
func (e *Engine) likelihoodLevel(lastEvidence *time.Time, now time.Time) int {
	if lastEvidence == nil {
		return 2
	}
	age := ageDays(*lastEvidence, now)
	switch {
	case age <= e.opts.RecentEvidenceDays:
		return 1
	case age <= e.opts.AgingEvidenceDays:
		return 2
	default:
		return 3
	}
}

// riskBucket classifies a cell score (impact + likelihood).
func riskBucket(score int) string {
	switch {
	case score >= 5:
		return ExposureHigh
	case score >= 4:
		return ExposureMedium
	default:
		return ExposureLow
	}
}

// buildHeatmap places every in-scope control into the 3x3 impact x
// likelihood matrix. Cell counts sum exactly to the in-scope total.
func (e *Engine) buildHeatmap(idx *index, records map[string]ControlStatusRecord, now time.Time) ([][]int, RiskDistribution, []RiskCellControl) {
	matrix := make([][]int, 3)
	for i := range matrix {
		matrix[i] = make([]int, 3)
	}

	dist := RiskDistribution{Exposure: ExposureLow}
	cells := make([]RiskCellControl, 0, len(idx.controls))

	for _, c := range idx.controls {
		rec := records[c.ID]
		impact := impactLevel(rec.Status)
		likelihood := e.likelihoodLevel(rec.LastEvidence, now)
		matrix[impact-1][likelihood-1]++

		score := impact + likelihood
		bucket := riskBucket(score)
		switch bucket {
		case ExposureHigh:
			dist.High++
		case ExposureMedium:
			dist.Medium++
		default:
			dist.Low++
		}
		dist.Total++

		cells = append(cells, RiskCellControl{
			ControlID:  c.ID,
			Code:       c.Code,
			Title:      c.Title,
			Impact:     impact,
			Likelihood: likelihood,
			Score:      score,
			Bucket:     bucket,
		})
	}

	// Highest nonzero bucket labels the overall exposure.
	switch {
	case dist.High > 0:
		dist.Exposure = ExposureHigh
	case dist.Medium > 0:
		dist.Exposure = ExposureMedium
	}

	// Riskiest first; control id breaks ties so output is deterministic.
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].Score != cells[j].Score {
			return cells[i].Score > cells[j].Score
		}
		return cells[i].ControlID < cells[j].ControlID
	})

	return matrix, dist, cells
}
