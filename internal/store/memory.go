package store

import (
	"context"
	"sync"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// MemorySource is an in-memory Source used by the dev server and tests.
type MemorySource struct {
	mu         sync.RWMutex
	frameworks []catalog.Framework
	controls   []catalog.Control
	events     []catalog.EvaluationEvent
	documents  []catalog.EvidenceDocument
}

// NewMemorySource creates an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// AddFramework registers a framework.
func (m *MemorySource) AddFramework(fw catalog.Framework) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameworks = append(m.frameworks, fw)
}

// AddControl registers a control.
func (m *MemorySource) AddControl(c catalog.Control) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controls = append(m.controls, c)
}

// AddEvaluation appends to the evaluation history.
func (m *MemorySource) AddEvaluation(ev catalog.EvaluationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// AddEvidence registers an evidence document.
func (m *MemorySource) AddEvidence(doc catalog.EvidenceDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, doc)
}

// Frameworks implements Source.
func (m *MemorySource) Frameworks(ctx context.Context) ([]catalog.Framework, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Framework, len(m.frameworks))
	copy(out, m.frameworks)
	return out, nil
}

// ControlsForFramework implements Source.
func (m *MemorySource) ControlsForFramework(ctx context.Context, framework string) ([]catalog.Control, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []catalog.Control
	for _, c := range m.controls {
		if c.MappedTo(framework) {
			out = append(out, c)
		}
	}
	return out, nil
}

// EvaluationsFor implements Source.
func (m *MemorySource) EvaluationsFor(ctx context.Context, controlIDs []string) ([]catalog.EvaluationEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := idSet(controlIDs)
	var out []catalog.EvaluationEvent
	for _, ev := range m.events {
		if wanted[ev.ControlID] {
			out = append(out, ev)
		}
	}
	return out, nil
}

// EvidenceFor implements Source.
func (m *MemorySource) EvidenceFor(ctx context.Context, controlIDs []string) ([]catalog.EvidenceDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := idSet(controlIDs)
	var out []catalog.EvidenceDocument
	for _, doc := range m.documents {
		if doc.Matched() && wanted[doc.ControlID] {
			out = append(out, doc)
		}
	}
	return out, nil
}

// UnmatchedEvidence implements Source.
func (m *MemorySource) UnmatchedEvidence(ctx context.Context) ([]catalog.EvidenceDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []catalog.EvidenceDocument
	for _, doc := range m.documents {
		if !doc.Matched() {
			out = append(out, doc)
		}
	}
	return out, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
