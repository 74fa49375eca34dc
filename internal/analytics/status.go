package analytics

import (
	"time"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// ControlStatusRecord is the resolved current status of one control,
// derived fresh per request and never persisted. LastEvidence is the most
// recent effective evidence timestamp, used for likelihood scoring.
type ControlStatusRecord struct {
	ControlID    string
	Status       catalog.Status
	LastEvidence *time.Time
}

// resolveStatuses reconciles evaluation history and evidence-derived
// signals into exactly one record per in-scope control. The most recent
// evaluation event wins outright, regardless of any evidence document.
// Without an evaluation, evidence match statuses are consulted in priority
// order COMPLIANT, PARTIAL, NOT_COMPLIANT. A control with neither resolves
// to UNKNOWN, silently.
func resolveStatuses(idx *index) map[string]ControlStatusRecord {
	records := make(map[string]ControlStatusRecord, len(idx.controls))
	for _, c := range idx.controls {
		rec := ControlStatusRecord{
			ControlID:    c.ID,
			Status:       catalog.StatusUnknown,
			LastEvidence: idx.lastEvidence(c.ID),
		}
		if ev, ok := idx.latestEvaluation(c.ID); ok {
			rec.Status = ev.Status
		} else {
			rec.Status = evidenceStatus(idx.docsByControl[c.ID])
		}
		records[c.ID] = rec
	}
	return records
}

// evidenceStatus derives a status from a control's evidence bundle.
func evidenceStatus(docs []catalog.EvidenceDocument) catalog.Status {
	for _, want := range []catalog.Status{catalog.StatusCompliant, catalog.StatusPartial, catalog.StatusNotCompliant} {
		for _, doc := range docs {
			if doc.MatchStatus == want {
				return want
			}
		}
	}
	return catalog.StatusUnknown
}
