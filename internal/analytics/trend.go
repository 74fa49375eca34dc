package analytics

import (
	"sort"
	"time"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// clampRange bounds a requested rolling window to the configured limits.
func (e *Engine) clampRange(days int) int {
	return e.opts.ClampRangeDays(days)
}

// ClampRangeDays bounds a requested rolling window to the configured
// limits. Non-positive input falls back to the default window.
func (o Options) ClampRangeDays(days int) int {
	if days <= 0 {
		days = o.DefaultRangeDays
	}
	if days < o.MinRangeDays {
		return o.MinRangeDays
	}
	if days > o.MaxRangeDays {
		return o.MaxRangeDays
	}
	return days
}

// statusAt resolves one control's status as of a sample point: the most
// recent evaluation at or before the point wins; otherwise evidence
// documents known by then are consulted in the usual priority order.
func statusAt(idx *index, controlID string, at time.Time) catalog.Status {
	events := idx.eventsByControl[controlID]
	// First event strictly after the sample point.
	n := sort.Search(len(events), func(i int) bool {
		return events[i].Timestamp.After(at)
	})
	if n > 0 {
		return events[n-1].Status
	}

	docs := idx.docsByControl[controlID]
	m := sort.Search(len(docs), func(i int) bool {
		return docs[i].EffectiveTime().After(at)
	})
	return evidenceStatus(docs[:m])
}

// complianceAt applies the coverage formula across the point-in-time
// snapshot at a sample point. only counts controls matching the filter
// when one is given.
func (e *Engine) complianceAt(idx *index, at time.Time, framework string) int {
	var counts StatusCounts
	for _, c := range idx.controls {
		if framework != "" && !c.MappedTo(framework) {
			continue
		}
		switch statusAt(idx, c.ID, at) {
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
	return coveragePercent(counts, e.opts.PartialWeight)
}

// mttrAt is the arithmetic mean, in days, over every resolved incident
// visible at the sample point. An incident is a NOT_COMPLIANT signal
// followed by a later COMPLIANT signal on the same control's timeline.
// Returns 0 when nothing has been resolved.
func (e *Engine) mttrAt(idx *index, at time.Time) float64 {
	var totalDays, resolved int
	for _, c := range idx.controls {
		line := idx.timeline[c.ID]
		n := sort.Search(len(line), func(i int) bool {
			return line[i].at.After(at)
		})
		line = line[:n]
		for i, sig := range line {
			if sig.status != catalog.StatusNotCompliant {
				continue
			}
			for j := i + 1; j < len(line); j++ {
				if line[j].status == catalog.StatusCompliant {
					totalDays += ageDays(sig.at, line[j].at)
					resolved++
					break
				}
			}
		}
	}
	if resolved == 0 {
		return 0
	}
	return float64(totalDays) / float64(resolved)
}

// buildTrends replays the event history to produce three aligned series
// over the rolling window: risk score %, compliance %, and MTTR days, one
// sample per day.
func (e *Engine) buildTrends(idx *index, rangeDays int, now time.Time) TrendSeries {
	series := TrendSeries{
		Labels:     make([]string, 0, rangeDays),
		RiskScore:  make([]int, 0, rangeDays),
		Compliance: make([]int, 0, rangeDays),
		MTTRDays:   make([]float64, 0, rangeDays),
	}
	for i := rangeDays - 1; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		compliance := e.complianceAt(idx, d, "")
		risk := 100 - compliance
		if risk < 0 {
			risk = 0
		}
		series.Labels = append(series.Labels, d.Format("2006-01-02"))
		series.Compliance = append(series.Compliance, compliance)
		series.RiskScore = append(series.RiskScore, risk)
		series.MTTRDays = append(series.MTTRDays, e.mttrAt(idx, d))
	}
	return series
}

// frameworkComparisonMonths is the fixed trailing window for the
// framework-progress comparison.
const frameworkComparisonMonths = 6

// buildFrameworkComparison produces a trailing month-end compliance series
// per comparison target. Targets are the active frameworks that at least
// one in-scope control maps to.
func (e *Engine) buildFrameworkComparison(idx *index, snap Snapshot, now time.Time) []FrameworkProgress {
	var targets []string
	for _, fw := range snap.Frameworks {
		if !fw.Active {
			continue
		}
		mapped := false
		for _, c := range idx.controls {
			if c.MappedTo(fw.Name) {
				mapped = true
				break
			}
		}
		if mapped {
			targets = append(targets, fw.Name)
		}
	}
	sort.Strings(targets)

	out := make([]FrameworkProgress, 0, len(targets))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, target := range targets {
		progress := FrameworkProgress{Framework: target}
		for m := frameworkComparisonMonths - 1; m >= 0; m-- {
			first := monthStart.AddDate(0, -m, 0)
			end := first.AddDate(0, 1, 0).Add(-time.Second)
			progress.Labels = append(progress.Labels, end.Format("Jan 2006"))
			progress.Compliance = append(progress.Compliance, e.complianceAt(idx, end, target))
		}
		out = append(out, progress)
	}
	return out
}
