package analytics

import (
	"time"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// testNow is the pinned request timestamp used across the analytics tests.
var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return New(DefaultOptions(), nil)
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func ctrl(id, code, owner, topic string, refs ...catalog.FrameworkRef) catalog.Control {
	return catalog.Control{
		ID:        id,
		Code:      code,
		Title:     "Control " + id,
		OwnerRole: owner,
		Topic:     topic,
		Refs:      refs,
	}
}

func evalEvent(controlID string, status catalog.Status, daysBack int) catalog.EvaluationEvent {
	return catalog.EvaluationEvent{
		ControlID: controlID,
		Status:    status,
		Timestamp: daysAgo(daysBack),
	}
}

func evDoc(controlID string, match catalog.Status, docType, name string, daysBack int) catalog.EvidenceDocument {
	return catalog.EvidenceDocument{
		ControlID:   controlID,
		MatchStatus: match,
		DocType:     docType,
		DisplayName: name,
		CreatedAt:   daysAgo(daysBack),
	}
}

// snapWith builds a single-framework snapshot around the given inputs.
func snapWith(controls []catalog.Control, events []catalog.EvaluationEvent, docs []catalog.EvidenceDocument) Snapshot {
	return Snapshot{
		Framework: "SOC2",
		Frameworks: []catalog.Framework{
			{Name: "SOC2", Active: true, UpdatedAt: daysAgo(30)},
		},
		Controls:  controls,
		Events:    events,
		Documents: docs,
	}
}
