// Package analytics implements the compliance dashboard aggregation engine.
// Each invocation receives a read-only snapshot and a pinned "now" and
// produces one response; all computation is pure and deterministic.
package analytics

import (
	"sort"
	"time"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// Snapshot is the materialized, read-only input for one request: the
// in-scope control catalog, the evaluation history and evidence documents
// for those controls, and the active framework registry.
type Snapshot struct {
	Framework  string
	Frameworks []catalog.Framework
	Controls   []catalog.Control
	Events     []catalog.EvaluationEvent
	Documents  []catalog.EvidenceDocument
}

// signal is one point on a control's merged timeline: an explicit
// evaluation or an evidence-derived judgment.
type signal struct {
	at         time.Time
	status     catalog.Status
	evaluation bool
}

// index holds the per-request lookup structures. Built once per request,
// never mutated afterwards; every analytic component reads the same index.
type index struct {
	controls        []catalog.Control
	eventsByControl map[string][]catalog.EvaluationEvent // ascending by timestamp
	docsByControl   map[string][]catalog.EvidenceDocument // ascending by effective time
	timeline        map[string][]signal                   // merged, ascending
}

func buildIndex(snap Snapshot) *index {
	idx := &index{
		controls:        snap.Controls,
		eventsByControl: make(map[string][]catalog.EvaluationEvent, len(snap.Controls)),
		docsByControl:   make(map[string][]catalog.EvidenceDocument, len(snap.Controls)),
		timeline:        make(map[string][]signal, len(snap.Controls)),
	}

	inScope := make(map[string]bool, len(snap.Controls))
	for _, c := range snap.Controls {
		inScope[c.ID] = true
	}

	for _, ev := range snap.Events {
		if !inScope[ev.ControlID] {
			continue
		}
		idx.eventsByControl[ev.ControlID] = append(idx.eventsByControl[ev.ControlID], ev)
	}
	for _, doc := range snap.Documents {
		if !doc.Matched() || !inScope[doc.ControlID] {
			continue
		}
		idx.docsByControl[doc.ControlID] = append(idx.docsByControl[doc.ControlID], doc)
	}

	for id, events := range idx.eventsByControl {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp.Before(events[j].Timestamp)
		})
		idx.eventsByControl[id] = events
	}
	for id, docs := range idx.docsByControl {
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].EffectiveTime().Before(docs[j].EffectiveTime())
		})
		idx.docsByControl[id] = docs
	}

	for _, c := range snap.Controls {
		var line []signal
		for _, ev := range idx.eventsByControl[c.ID] {
			line = append(line, signal{at: ev.Timestamp, status: ev.Status, evaluation: true})
		}
		for _, doc := range idx.docsByControl[c.ID] {
			line = append(line, signal{at: doc.EffectiveTime(), status: doc.MatchStatus})
		}
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].at.Before(line[j].at)
		})
		if line != nil {
			idx.timeline[c.ID] = line
		}
	}

	return idx
}

// lastEvidence returns the most recent effective evidence timestamp for a
// control, or nil when it has no documents.
func (idx *index) lastEvidence(controlID string) *time.Time {
	docs := idx.docsByControl[controlID]
	if len(docs) == 0 {
		return nil
	}
	t := docs[len(docs)-1].EffectiveTime()
	return &t
}

// latestEvaluation returns the most recent evaluation event for a control.
func (idx *index) latestEvaluation(controlID string) (catalog.EvaluationEvent, bool) {
	events := idx.eventsByControl[controlID]
	if len(events) == 0 {
		return catalog.EvaluationEvent{}, false
	}
	return events[len(events)-1], true
}

// ageDays is whole days elapsed between t and now.
func ageDays(t, now time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}
