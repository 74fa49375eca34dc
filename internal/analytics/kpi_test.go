package analytics

import (
	"testing"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

func TestSeverityForPercent(t *testing.T) {
	e := testEngine()
	tests := []struct {
		p    int
		want string
	}{
		{0, SeverityHigh},
		{59, SeverityHigh},
		{60, SeverityMedium},
		{79, SeverityMedium},
		{80, SeverityLow},
		{100, SeverityLow},
	}
	for _, tt := range tests {
		if got := e.severityForPercent(tt.p); got != tt.want {
			t.Errorf("severityForPercent(%d) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestSeverityForCount(t *testing.T) {
	if got := severityForCount(0, SeverityHigh); got != SeverityLow {
		t.Errorf("zero count = %q, want low", got)
	}
	if got := severityForCount(3, SeverityHigh); got != SeverityHigh {
		t.Errorf("nonzero count = %q, want high", got)
	}
}

func TestBuildKPIs(t *testing.T) {
	d := &Dashboard{
		Metrics: Metrics{
			TotalControls:   10,
			CoveragePercent: 72,
			Compliant:       6,
			NotCompliant:    2,
			Evidence:        EvidenceMetrics{Score: 85, High: 7},
		},
		RiskDistribution: RiskDistribution{High: 1, Exposure: ExposureHigh},
		AuditSummary:     AuditSummary{EvaluatedControls: 8, MTTRDays: 4.5},
	}
	tiles := testEngine().buildKPIs(d)

	wantIDs := []string{
		"compliance-coverage", "failed-controls", "evidence-health",
		"risk-exposure", "untested-controls", "mean-time-to-resolve",
	}
	if len(tiles) != len(wantIDs) {
		t.Fatalf("got %d tiles, want %d", len(tiles), len(wantIDs))
	}
	for i, want := range wantIDs {
		if tiles[i].ID != want {
			t.Errorf("tile %d = %q, want %q", i, tiles[i].ID, want)
		}
	}

	if tiles[0].Value != "72%" || tiles[0].Severity != SeverityMedium {
		t.Errorf("coverage tile: %+v", tiles[0])
	}
	if tiles[1].Value != "2" || tiles[1].Severity != SeverityHigh {
		t.Errorf("failed-controls tile: %+v", tiles[1])
	}
	if tiles[4].Value != "2" || tiles[4].Severity != SeverityMedium {
		t.Errorf("untested tile: %+v", tiles[4])
	}
	if tiles[5].Value != "4.5 days" {
		t.Errorf("mttr tile value = %q", tiles[5].Value)
	}
}

func TestBuildRecommendationsNonzeroSorted(t *testing.T) {
	snap := snapWith(
		[]catalog.Control{
			ctrl("ctl-1", "AC-01", "lead", "Access"), // failing, evidenced
			ctrl("ctl-2", "AC-02", "", "Access"),     // unknown, no evidence, no owner
		},
		[]catalog.EvaluationEvent{evalEvent("ctl-1", catalog.StatusNotCompliant, 2)},
		[]catalog.EvidenceDocument{evDoc("ctl-1", catalog.StatusNotCompliant, "log", "l.csv", 200)},
	)
	e := testEngine()
	idx := buildIndex(snap)
	records := resolveStatuses(idx)
	d := &Dashboard{
		Metrics: Metrics{
			NotCompliant: 1,
			Evidence:     EvidenceMetrics{Freshness: FreshnessCounts{Outdated: 1, Missing: 1}},
		},
	}

	actions := e.buildRecommendations(idx, records, d)
	wantIDs := []string{
		"remediate-failed-controls",
		"collect-missing-evidence",
		"assign-control-owners",
		"refresh-aging-evidence",
	}
	if len(actions) != len(wantIDs) {
		t.Fatalf("got %d actions, want %d", len(actions), len(wantIDs))
	}
	for i, want := range wantIDs {
		if actions[i].ID != want {
			t.Errorf("action %d = %q, want %q", i, actions[i].ID, want)
		}
	}
	if actions[0].Severity != SeverityHigh || actions[2].Severity != SeverityMedium {
		t.Errorf("unexpected severities: %+v", actions)
	}
}

func TestBuildRecommendationsSkipsZeroSignals(t *testing.T) {
	snap := snapWith(
		[]catalog.Control{ctrl("ctl-1", "AC-01", "lead", "Access")},
		[]catalog.EvaluationEvent{evalEvent("ctl-1", catalog.StatusCompliant, 2)},
		[]catalog.EvidenceDocument{evDoc("ctl-1", catalog.StatusCompliant, "log", "l.csv", 5)},
	)
	e := testEngine()
	idx := buildIndex(snap)
	d := &Dashboard{}

	actions := e.buildRecommendations(idx, resolveStatuses(idx), d)
	if len(actions) != 0 {
		t.Errorf("healthy posture should produce no actions, got %+v", actions)
	}
}

func TestBuildExecutiveSummary(t *testing.T) {
	d := &Dashboard{
		Metrics: Metrics{
			TotalControls:   10,
			CoveragePercent: 72,
			Evidence:        EvidenceMetrics{Score: 85},
		},
		RiskDistribution: RiskDistribution{High: 2},
		ComplianceGaps:   []ReasonCount{{ReasonID: ReasonMissingEvidence, Label: "Missing evidence", Count: 3}},
		AuditSummary:     AuditSummary{MTTRDays: 4.5},
	}
	summary := testEngine().buildExecutiveSummary(d)

	if summary.Headline != "Compliance coverage is at 72% across 10 controls" {
		t.Errorf("headline = %q", summary.Headline)
	}
	if len(summary.Highlights) != 4 {
		t.Fatalf("got %d highlights, want 4", len(summary.Highlights))
	}
	if summary.Highlights[1] != "Top remediation gap: Missing evidence (3 controls)" {
		t.Errorf("gap highlight = %q", summary.Highlights[1])
	}
}
