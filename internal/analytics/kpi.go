package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// KPI severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

var severityRank = map[string]int{SeverityHigh: 0, SeverityMedium: 1, SeverityLow: 2}

// severityForPercent grades coverage-like metrics against fixed thresholds.
func (e *Engine) severityForPercent(p int) string {
	switch {
	case p < e.opts.CoverageHighThreshold:
		return SeverityHigh
	case p < e.opts.CoverageMediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// severityForCount grades incident-like metrics: any nonzero count is the
// given severity, zero is low.
func severityForCount(n int, nonzero string) string {
	if n > 0 {
		return nonzero
	}
	return SeverityLow
}

// buildKPIs assembles the fixed tile set from already-computed sections.
// Pure assembly; no new analysis happens here.
func (e *Engine) buildKPIs(d *Dashboard) []KpiTile {
	untested := d.Metrics.TotalControls - d.AuditSummary.EvaluatedControls
	return []KpiTile{
		{
			ID:        "compliance-coverage",
			Label:     "Compliance coverage",
			Value:     fmt.Sprintf("%d%%", d.Metrics.CoveragePercent),
			Note:      fmt.Sprintf("%d of %d controls fully compliant", d.Metrics.Compliant, d.Metrics.TotalControls),
			Severity:  e.severityForPercent(d.Metrics.CoveragePercent),
			Drilldown: "controls",
		},
		{
			ID:        "failed-controls",
			Label:     "Failed controls",
			Value:     strconv.Itoa(d.Metrics.NotCompliant),
			Note:      "controls failing their latest evaluation",
			Severity:  severityForCount(d.Metrics.NotCompliant, SeverityHigh),
			Drilldown: "controls?status=NOT_COMPLIANT",
		},
		{
			ID:        "evidence-health",
			Label:     "Evidence health",
			Value:     fmt.Sprintf("%d%%", d.Metrics.Evidence.Score),
			Note:      fmt.Sprintf("%d controls backed by high-quality evidence", d.Metrics.Evidence.High),
			Severity:  e.severityForPercent(d.Metrics.Evidence.Score),
			Drilldown: "evidence",
		},
		{
			ID:        "risk-exposure",
			Label:     "High-risk controls",
			Value:     strconv.Itoa(d.RiskDistribution.High),
			Note:      "overall exposure is " + d.RiskDistribution.Exposure,
			Severity:  severityForCount(d.RiskDistribution.High, SeverityHigh),
			Drilldown: "risk",
		},
		{
			ID:        "untested-controls",
			Label:     "Untested controls",
			Value:     strconv.Itoa(untested),
			Note:      "controls with no evaluation on record",
			Severity:  severityForCount(untested, SeverityMedium),
			Drilldown: "audit",
		},
		{
			ID:        "mean-time-to-resolve",
			Label:     "Mean time to resolve",
			Value:     fmt.Sprintf("%.1f days", d.AuditSummary.MTTRDays),
			Note:      "average days from failure to resolution",
			Severity:  severityForCount(int(d.AuditSummary.MTTRDays), SeverityMedium),
			Drilldown: "trends",
		},
	}
}

// actionSignal is one remediation trigger with its fixed topical priority.
type actionSignal struct {
	id       string
	title    string
	reason   string
	severity string
	priority int
	count    int
}

// buildRecommendations emits one action per nonzero signal, sorted by
// severity then fixed topical priority.
func (e *Engine) buildRecommendations(idx *index, records map[string]ControlStatusRecord, d *Dashboard) []RecommendedAction {
	var missingEvidence, unowned int
	for _, c := range idx.controls {
		rec := records[c.ID]
		if len(idx.docsByControl[c.ID]) == 0 {
			missingEvidence++
		}
		if rec.Status != catalog.StatusCompliant && !c.HasOwner() {
			unowned++
		}
	}
	overdue := d.Metrics.Evidence.Freshness.Outdated +
		d.Metrics.Evidence.Freshness.ExpiringSoon +
		d.Metrics.Evidence.Freshness.Expired

	signals := []actionSignal{
		{
			id:       "remediate-failed-controls",
			title:    "Remediate failing controls",
			reason:   fmt.Sprintf("%d controls are failing their latest evaluation", d.Metrics.NotCompliant),
			severity: SeverityHigh,
			priority: 0,
			count:    d.Metrics.NotCompliant,
		},
		{
			id:       "collect-missing-evidence",
			title:    "Collect missing evidence",
			reason:   fmt.Sprintf("%d controls have no supporting evidence", missingEvidence),
			severity: SeverityHigh,
			priority: 1,
			count:    missingEvidence,
		},
		{
			id:       "assign-control-owners",
			title:    "Assign control owners",
			reason:   fmt.Sprintf("%d at-risk controls have no assigned owner", unowned),
			severity: SeverityMedium,
			priority: 2,
			count:    unowned,
		},
		{
			id:       "refresh-aging-evidence",
			title:    "Refresh aging evidence",
			reason:   fmt.Sprintf("%d controls have evidence past the review threshold", overdue),
			severity: SeverityMedium,
			priority: 3,
			count:    overdue,
		},
	}

	var actions []RecommendedAction
	for _, sig := range signals {
		if sig.count == 0 {
			continue
		}
		actions = append(actions, RecommendedAction{
			ID:       sig.id,
			Title:    sig.title,
			Reason:   sig.reason,
			Severity: sig.severity,
			Count:    sig.count,
		})
	}
	sort.SliceStable(actions, func(i, j int) bool {
		ri, rj := severityRank[actions[i].Severity], severityRank[actions[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return priorityOf(signals, actions[i].ID) < priorityOf(signals, actions[j].ID)
	})
	return actions
}

func priorityOf(signals []actionSignal, id string) int {
	for _, sig := range signals {
		if sig.id == id {
			return sig.priority
		}
	}
	return len(signals)
}

// buildExecutiveSummary condenses the computed sections into a headline
// plus highlight strings.
func (e *Engine) buildExecutiveSummary(d *Dashboard) ExecutiveSummary {
	summary := ExecutiveSummary{
		Headline: fmt.Sprintf("Compliance coverage is at %d%% across %d controls",
			d.Metrics.CoveragePercent, d.Metrics.TotalControls),
	}
	if d.RiskDistribution.High > 0 {
		summary.Highlights = append(summary.Highlights,
			fmt.Sprintf("%d controls carry high risk exposure", d.RiskDistribution.High))
	}
	if len(d.ComplianceGaps) > 0 {
		top := d.ComplianceGaps[0]
		summary.Highlights = append(summary.Highlights,
			fmt.Sprintf("Top remediation gap: %s (%d controls)", top.Label, top.Count))
	}
	summary.Highlights = append(summary.Highlights,
		fmt.Sprintf("Evidence health score is %d%%", d.Metrics.Evidence.Score))
	if d.AuditSummary.MTTRDays > 0 {
		summary.Highlights = append(summary.Highlights,
			fmt.Sprintf("Mean time to resolve is %.1f days", d.AuditSummary.MTTRDays))
	}
	return summary
}
