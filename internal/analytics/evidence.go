package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// Evidence quality levels.
const (
	evidenceLow    = 0
	evidenceMedium = 1
	evidenceHigh   = 2
)

// Evidence freshness classes for the single most recent document per
// control.
const (
	FreshnessValid        = "valid"
	FreshnessOutdated     = "outdated"
	FreshnessExpiringSoon = "expiringSoon"
	FreshnessExpired      = "expired"
	FreshnessMissing      = "missing"
)

// System-of-record artifacts score high; written governance artifacts score
// medium; anything else is low.
var (
	highQualityTokens   = []string{"log", "logs", "config", "configuration", "ticket", "record", "records"}
	mediumQualityTokens = []string{"policy", "procedure", "process", "guideline", "standard", "plan"}
)

// docQuality classifies one document by keyword match on its type and name.
// Governance controls upgrade medium evidence to high.
func docQuality(doc catalog.EvidenceDocument, governance bool) int {
	text := strings.ToLower(doc.DocType + " " + doc.DisplayName)
	for _, token := range highQualityTokens {
		if strings.Contains(text, token) {
			return evidenceHigh
		}
	}
	for _, token := range mediumQualityTokens {
		if strings.Contains(text, token) {
			if governance {
				return evidenceHigh
			}
			return evidenceMedium
		}
	}
	return evidenceLow
}

// scoreEvidence classifies every control's evidence bundle by quality and
// freshness. A control's level is the best level among its documents, low
// when it has none.
func (e *Engine) scoreEvidence(idx *index, now time.Time) EvidenceMetrics {
	var metrics EvidenceMetrics

	for _, c := range idx.controls {
		docs := idx.docsByControl[c.ID]

		level := evidenceLow
		for _, doc := range docs {
			if q := docQuality(doc, c.IsGovernance()); q > level {
				level = q
			}
		}
		switch level {
		case evidenceHigh:
			metrics.High++
		case evidenceMedium:
			metrics.Medium++
		default:
			metrics.Low++
		}

		switch e.freshness(docs, now) {
		case FreshnessValid:
			metrics.Freshness.Valid++
		case FreshnessOutdated:
			metrics.Freshness.Outdated++
		case FreshnessExpiringSoon:
			metrics.Freshness.ExpiringSoon++
		case FreshnessExpired:
			metrics.Freshness.Expired++
		default:
			metrics.Freshness.Missing++
		}
	}

	total := len(idx.controls)
	if total > 0 {
		weighted := float64(metrics.High) + e.opts.PartialWeight*float64(metrics.Medium)
		metrics.Score = int(math.Round(100 * weighted / float64(total)))
	}
	return metrics
}

// freshness classifies the single most recent document per control by age.
func (e *Engine) freshness(docs []catalog.EvidenceDocument, now time.Time) string {
	if len(docs) == 0 {
		return FreshnessMissing
	}
	age := ageDays(docs[len(docs)-1].EffectiveTime(), now)
	switch {
	case age > e.opts.EvidenceExpiredDays:
		return FreshnessExpired
	case age >= e.opts.EvidenceExpiringDays:
		return FreshnessExpiringSoon
	case age >= e.opts.EvidenceOutdatedDays:
		return FreshnessOutdated
	default:
		return FreshnessValid
	}
}
