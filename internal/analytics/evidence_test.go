package analytics

import (
	"testing"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

func TestDocQuality(t *testing.T) {
	plain := ctrl("ctl-1", "AC-01", "lead", "Access")
	gov := ctrl("ctl-2", "GOV-02", "ciso", "Governance")

	tests := []struct {
		name string
		doc  catalog.EvidenceDocument
		c    catalog.Control
		want int
	}{
		{"log type", evDoc("ctl-1", catalog.StatusCompliant, "log", "audit.csv", 1), plain, evidenceHigh},
		{"config in name", evDoc("ctl-1", catalog.StatusCompliant, "export", "firewall-configuration.json", 1), plain, evidenceHigh},
		{"ticket record", evDoc("ctl-1", catalog.StatusCompliant, "ticket", "JIRA-123", 1), plain, evidenceHigh},
		{"policy document", evDoc("ctl-1", catalog.StatusPartial, "policy", "ac-policy.pdf", 1), plain, evidenceMedium},
		{"procedure document", evDoc("ctl-1", catalog.StatusPartial, "procedure", "onboarding.docx", 1), plain, evidenceMedium},
		{"governance upgrades policy", evDoc("ctl-2", catalog.StatusPartial, "policy", "risk-policy.pdf", 1), gov, evidenceHigh},
		{"screenshot", evDoc("ctl-1", catalog.StatusPartial, "screenshot", "console.png", 1), plain, evidenceLow},
		{"empty type and name", catalog.EvidenceDocument{ControlID: "ctl-1"}, plain, evidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := docQuality(tt.doc, tt.c.IsGovernance()); got != tt.want {
				t.Errorf("docQuality() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFreshness(t *testing.T) {
	e := testEngine()
	tests := []struct {
		name    string
		daysOld int
		want    string
	}{
		{"fresh", 30, FreshnessValid},
		{"just under outdated", 179, FreshnessValid},
		{"outdated boundary", 180, FreshnessOutdated},
		{"late outdated", 334, FreshnessOutdated},
		{"expiring boundary", 335, FreshnessExpiringSoon},
		{"near expiry", 340, FreshnessExpiringSoon},
		{"expired boundary still expiring", 365, FreshnessExpiringSoon},
		{"expired", 366, FreshnessExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := []catalog.EvidenceDocument{evDoc("ctl-1", catalog.StatusCompliant, "log", "l.csv", tt.daysOld)}
			if got := e.freshness(docs, testNow); got != tt.want {
				t.Errorf("freshness(%d days) = %q, want %q", tt.daysOld, got, tt.want)
			}
		})
	}

	if got := e.freshness(nil, testNow); got != FreshnessMissing {
		t.Errorf("freshness(no docs) = %q, want missing", got)
	}
}

func TestFreshnessUsesMostRecentDocument(t *testing.T) {
	e := testEngine()
	docs := []catalog.EvidenceDocument{
		evDoc("ctl-1", catalog.StatusCompliant, "log", "old.csv", 400),
		evDoc("ctl-1", catalog.StatusCompliant, "log", "new.csv", 10),
	}
	snap := snapWith([]catalog.Control{ctrl("ctl-1", "AC-01", "lead", "Access")}, nil, docs)
	idx := buildIndex(snap)
	if got := e.freshness(idx.docsByControl["ctl-1"], testNow); got != FreshnessValid {
		t.Errorf("freshness = %q, want valid from the newest document", got)
	}
}

func TestScoreEvidence(t *testing.T) {
	// One high, one medium, one without evidence across three controls:
	// round(100 * (1 + 0.6*1) / 3) = 53.
	snap := snapWith(
		[]catalog.Control{
			ctrl("ctl-1", "AC-01", "lead", "Access"),
			ctrl("ctl-2", "AC-02", "lead", "Access"),
			ctrl("ctl-3", "AC-03", "lead", "Access"),
		},
		nil,
		[]catalog.EvidenceDocument{
			evDoc("ctl-1", catalog.StatusCompliant, "log", "audit.csv", 10),
			evDoc("ctl-2", catalog.StatusPartial, "policy", "ac-policy.pdf", 200),
		},
	)
	e := testEngine()
	metrics := e.scoreEvidence(buildIndex(snap), testNow)

	if metrics.High != 1 || metrics.Medium != 1 || metrics.Low != 1 {
		t.Errorf("level counts = %d/%d/%d, want 1/1/1", metrics.High, metrics.Medium, metrics.Low)
	}
	if metrics.Score != 53 {
		t.Errorf("score = %d, want 53", metrics.Score)
	}
	if metrics.Freshness.Valid != 1 || metrics.Freshness.Outdated != 1 || metrics.Freshness.Missing != 1 {
		t.Errorf("unexpected freshness counts: %+v", metrics.Freshness)
	}
}

func TestScoreEvidenceBestDocumentWins(t *testing.T) {
	// A control's level is its best document, not its worst.
	snap := snapWith(
		[]catalog.Control{ctrl("ctl-1", "AC-01", "lead", "Access")},
		nil,
		[]catalog.EvidenceDocument{
			evDoc("ctl-1", catalog.StatusPartial, "screenshot", "console.png", 5),
			evDoc("ctl-1", catalog.StatusCompliant, "log", "audit.csv", 5),
		},
	)
	metrics := testEngine().scoreEvidence(buildIndex(snap), testNow)
	if metrics.High != 1 || metrics.Low != 0 {
		t.Errorf("level counts = %+v, want the high document to win", metrics)
	}
}
