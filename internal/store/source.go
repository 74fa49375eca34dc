// Package store materializes read-only request snapshots from the upstream
// collaborators: control catalog, evaluation history, evidence store, and
// framework registry. Large control sets are fetched in bounded batches to
// respect store-side request-size limits; batch results are merged before
// any analytic component runs.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lvonguyen/complyforge/internal/analytics"
	"github.com/lvonguyen/complyforge/internal/catalog"
	"github.com/lvonguyen/complyforge/internal/observability"
)

// ErrSnapshotUnavailable wraps any upstream batch failure. Partial or
// inconsistent aggregates are never returned.
var ErrSnapshotUnavailable = errors.New("unable to compute dashboard")

// Source is the upstream data contract. Implementations own retry policy;
// the engine performs none.
type Source interface {
	Frameworks(ctx context.Context) ([]catalog.Framework, error)
	ControlsForFramework(ctx context.Context, framework string) ([]catalog.Control, error)
	EvaluationsFor(ctx context.Context, controlIDs []string) ([]catalog.EvaluationEvent, error)
	EvidenceFor(ctx context.Context, controlIDs []string) ([]catalog.EvidenceDocument, error)
	UnmatchedEvidence(ctx context.Context) ([]catalog.EvidenceDocument, error)
}

// DefaultBatchSize bounds one identifier batch against the store.
const DefaultBatchSize = 800

// Fetcher assembles snapshots from a Source.
type Fetcher struct {
	src       Source
	batchSize int
	log       *zap.Logger
	metrics   *observability.Metrics
}

// NewFetcher creates a fetcher. Non-positive batch sizes fall back to
// DefaultBatchSize; a nil logger becomes a no-op one.
func NewFetcher(src Source, batchSize int, log *zap.Logger) *Fetcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{src: src, batchSize: batchSize, log: log}
}

// WithMetrics attaches batch-level instrumentation. A nil metrics set is
// accepted and leaves the fetcher uninstrumented.
func (f *Fetcher) WithMetrics(metrics *observability.Metrics) *Fetcher {
	f.metrics = metrics
	return f
}

// Snapshot fetches the full input for one aggregation request. An empty
// framework name selects the most recently updated active framework.
// Absence of any active framework yields an empty snapshot, not an error;
// any batch failure aborts the whole fetch with ErrSnapshotUnavailable.
func (f *Fetcher) Snapshot(ctx context.Context, framework string) (analytics.Snapshot, error) {
	frameworks, err := f.src.Frameworks(ctx)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("%w: frameworks: %v", ErrSnapshotUnavailable, err)
	}

	var active []catalog.Framework
	for _, fw := range frameworks {
		if fw.Active {
			active = append(active, fw)
		}
	}
	snap := analytics.Snapshot{Framework: framework, Frameworks: active}
	if len(active) == 0 {
		snap.Framework = ""
		return snap, nil
	}

	if snap.Framework == "" {
		selected := active[0]
		for _, fw := range active[1:] {
			if fw.UpdatedAt.After(selected.UpdatedAt) {
				selected = fw
			}
		}
		snap.Framework = selected.Name
	}

	controls, err := f.src.ControlsForFramework(ctx, snap.Framework)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("%w: controls: %v", ErrSnapshotUnavailable, err)
	}
	snap.Controls = controls
	if len(controls) == 0 {
		return snap, nil
	}

	ids := make([]string, len(controls))
	for i, c := range controls {
		ids[i] = c.ID
	}
	chunks := chunkIDs(ids, f.batchSize)

	// Batches run concurrently but land in preassigned slots, so the merged
	// order is independent of scheduling.
	eventChunks := make([][]catalog.EvaluationEvent, len(chunks))
	docChunks := make([][]catalog.EvidenceDocument, len(chunks))
	var unmatched []catalog.EvidenceDocument

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			events, err := f.src.EvaluationsFor(gctx, chunk)
			if err != nil {
				return fmt.Errorf("evaluations batch %d: %w", i, err)
			}
			eventChunks[i] = events
			return nil
		})
		g.Go(func() error {
			docs, err := f.src.EvidenceFor(gctx, chunk)
			if err != nil {
				return fmt.Errorf("evidence batch %d: %w", i, err)
			}
			docChunks[i] = docs
			return nil
		})
	}
	g.Go(func() error {
		docs, err := f.src.UnmatchedEvidence(gctx)
		if err != nil {
			return fmt.Errorf("unmatched evidence: %w", err)
		}
		unmatched = docs
		return nil
	})

	if err := g.Wait(); err != nil {
		f.log.Warn("snapshot fetch aborted", zap.Error(err))
		if f.metrics != nil {
			f.metrics.SnapshotBatches.WithLabelValues("error").Add(float64(len(chunks)))
			f.metrics.SnapshotFailures.Inc()
		}
		return analytics.Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	if f.metrics != nil {
		f.metrics.SnapshotBatches.WithLabelValues("ok").Add(float64(len(chunks)))
	}

	for _, events := range eventChunks {
		snap.Events = append(snap.Events, events...)
	}
	for _, docs := range docChunks {
		snap.Documents = append(snap.Documents, docs...)
	}
	snap.Documents = append(snap.Documents, unmatched...)

	f.log.Debug("snapshot fetched",
		zap.String("framework", snap.Framework),
		zap.Int("controls", len(snap.Controls)),
		zap.Int("events", len(snap.Events)),
		zap.Int("documents", len(snap.Documents)),
		zap.Int("batches", len(chunks)),
	)
	return snap, nil
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
