package analytics

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// Options holds the tunable analytics thresholds. The day thresholds are
// policy, not load-bearing business logic; defaults match current product
// settings.
type Options struct {
	// PartialWeight is the credit a PARTIAL control earns toward coverage.
	PartialWeight float64 `yaml:"partial_weight"`

	// Likelihood tiers for evidence age, in days.
	RecentEvidenceDays int `yaml:"recent_evidence_days"`
	AgingEvidenceDays  int `yaml:"aging_evidence_days"`

	// Evidence freshness tiers, in days.
	EvidenceOutdatedDays int `yaml:"evidence_outdated_days"`
	EvidenceExpiringDays int `yaml:"evidence_expiring_days"`
	EvidenceExpiredDays  int `yaml:"evidence_expired_days"`

	// PolicyStaleDays is the age at which policy evidence counts as outdated.
	PolicyStaleDays int `yaml:"policy_stale_days"`

	// Rolling trend window bounds.
	MinRangeDays     int `yaml:"min_range_days"`
	MaxRangeDays     int `yaml:"max_range_days"`
	DefaultRangeDays int `yaml:"default_range_days"`

	// KPI severity thresholds for coverage-like percentages.
	CoverageHighThreshold   int `yaml:"coverage_high_threshold"`
	CoverageMediumThreshold int `yaml:"coverage_medium_threshold"`
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{
		PartialWeight:           0.6,
		RecentEvidenceDays:      14,
		AgingEvidenceDays:       90,
		EvidenceOutdatedDays:    180,
		EvidenceExpiringDays:    335,
		EvidenceExpiredDays:     365,
		PolicyStaleDays:         180,
		MinRangeDays:            30,
		MaxRangeDays:            365,
		DefaultRangeDays:        90,
		CoverageHighThreshold:   60,
		CoverageMediumThreshold: 80,
	}
}

// Request carries the accepted filters for one aggregation. BusinessUnit
// and RiskCategory are pass-through; no catalog populates them yet.
type Request struct {
	Framework    string
	BusinessUnit string
	RiskCategory string
	RangeDays    int
}

// Engine computes one dashboard per request. It is stateless; all derived
// structures are request-local.
type Engine struct {
	opts Options
	log  *zap.Logger
}

// New creates an engine. A nil logger is replaced with a no-op one.
func New(opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{opts: opts, log: log}
}

// rangeDayOptions are the selectable trend windows.
var rangeDayOptions = []int{30, 60, 90, 180, 365}

// Compute runs the full aggregation over a snapshot at a pinned "now".
// Re-running with the same snapshot and the same now yields identical
// output. Zero in-scope controls is not an error: the response comes back
// fully zeroed with every list empty.
func (e *Engine) Compute(req Request, snap Snapshot, now time.Time) *Dashboard {
	now = now.UTC()
	req.RangeDays = e.clampRange(req.RangeDays)

	if len(snap.Controls) == 0 {
		return e.emptyDashboard(req, snap, now)
	}

	idx := buildIndex(snap)
	records := resolveStatuses(idx)
	counts := countStatuses(records)

	d := &Dashboard{GeneratedAt: now}

	matrix, dist, cellControls := e.buildHeatmap(idx, records, now)
	d.RiskHeatmap = matrix
	d.RiskDistribution = dist
	d.RiskHeatmapControls = cellControls

	d.ComplianceGaps = e.classifyGaps(idx, records, now)
	d.RiskDrivers = e.rankDrivers(idx, records)

	audit := e.buildAuditSummary(idx, now)
	d.AuditSummary = audit
	d.UploadSummary = buildUploadSummary(snap.Documents)

	d.Metrics = Metrics{
		TotalControls:   counts.Total(),
		CoveragePercent: coveragePercent(counts, e.opts.PartialWeight),
		Compliant:       counts.Compliant,
		Partial:         counts.Partial,
		NotCompliant:    counts.NotCompliant,
		Unknown:         counts.Unknown,
		Evidence:        e.scoreEvidence(idx, now),
		Audit:           audit,
		Submissions: SubmissionMetrics{
			TotalDocuments: d.UploadSummary.TotalDocuments,
			Matched:        d.UploadSummary.Matched,
			Unmatched:      d.UploadSummary.Unmatched,
			Reviewed:       d.UploadSummary.Reviewed,
			Pending:        d.UploadSummary.Pending,
			LastUploadAt:   d.UploadSummary.LastUploadAt,
		},
	}

	d.ComplianceBreakdown = Breakdown{
		Compliant:           counts.Compliant,
		Partial:             counts.Partial,
		NotCompliant:        counts.NotCompliant,
		Unknown:             counts.Unknown,
		CompliantPercent:    percentOf(counts.Compliant, counts.Total()),
		PartialPercent:      percentOf(counts.Partial, counts.Total()),
		NotCompliantPercent: percentOf(counts.NotCompliant, counts.Total()),
		UnknownPercent:      percentOf(counts.Unknown, counts.Total()),
	}

	d.TrendsV2 = e.buildTrends(idx, req.RangeDays, now)
	d.FrameworkComparisonV2 = e.buildFrameworkComparison(idx, snap, now)

	d.KPIs = e.buildKPIs(d)
	d.RecommendedActionsV2 = e.buildRecommendations(idx, records, d)
	d.ExecutiveSummary = e.buildExecutiveSummary(d)

	d.FilterOptions = buildFilterOptions(snap)
	d.AppliedFilters = AppliedFilters{
		Framework:    snap.Framework,
		BusinessUnit: req.BusinessUnit,
		RiskCategory: req.RiskCategory,
		RangeDays:    req.RangeDays,
	}

	e.log.Debug("dashboard computed",
		zap.String("framework", snap.Framework),
		zap.Int("controls", counts.Total()),
		zap.Int("coverage_percent", d.Metrics.CoveragePercent),
	)
	return d
}

// emptyDashboard is the explicit zeroed shape for no-scope requests: all
// counts at 0, all lists empty, never an error.
func (e *Engine) emptyDashboard(req Request, snap Snapshot, now time.Time) *Dashboard {
	matrix := make([][]int, 3)
	for i := range matrix {
		matrix[i] = make([]int, 3)
	}
	return &Dashboard{
		GeneratedAt:           now,
		RiskHeatmap:           matrix,
		RiskDistribution:      RiskDistribution{Exposure: ExposureLow},
		RiskHeatmapControls:   []RiskCellControl{},
		RiskDrivers:           []ReasonCount{},
		ComplianceGaps:        []ReasonCount{},
		TrendsV2:              TrendSeries{Labels: []string{}, RiskScore: []int{}, Compliance: []int{}, MTTRDays: []float64{}},
		FrameworkComparisonV2: []FrameworkProgress{},
		KPIs:                  []KpiTile{},
		RecommendedActionsV2:  []RecommendedAction{},
		UploadSummary:         UploadSummary{ByType: map[string]int{}},
		ExecutiveSummary:      ExecutiveSummary{Headline: "No active framework in scope", Highlights: []string{}},
		FilterOptions:         buildFilterOptions(snap),
		AppliedFilters: AppliedFilters{
			Framework:    snap.Framework,
			BusinessUnit: req.BusinessUnit,
			RiskCategory: req.RiskCategory,
			RangeDays:    req.RangeDays,
		},
	}
}

// buildAuditSummary summarizes the evaluation history at the pinned now.
func (e *Engine) buildAuditSummary(idx *index, now time.Time) AuditSummary {
	summary := AuditSummary{MTTRDays: e.mttrAt(idx, now)}
	var last *time.Time
	for _, c := range idx.controls {
		events := idx.eventsByControl[c.ID]
		if len(events) == 0 {
			continue
		}
		summary.EvaluatedControls++
		summary.TotalEvaluations += len(events)
		ts := events[len(events)-1].Timestamp
		if last == nil || ts.After(*last) {
			t := ts
			last = &t
		}
	}
	summary.LastEvaluationAt = last
	summary.CoveragePercent = percentOf(summary.EvaluatedControls, len(idx.controls))
	return summary
}

// buildUploadSummary summarizes the evidence store, including unmatched
// documents that belong to no control.
func buildUploadSummary(docs []catalog.EvidenceDocument) UploadSummary {
	summary := UploadSummary{ByType: map[string]int{}}
	var last *time.Time
	for _, doc := range docs {
		summary.TotalDocuments++
		if doc.Matched() {
			summary.Matched++
		} else {
			summary.Unmatched++
		}
		if doc.Reviewed() {
			summary.Reviewed++
		} else {
			summary.Pending++
		}
		docType := doc.DocType
		if docType == "" {
			docType = "other"
		}
		summary.ByType[docType]++
		ts := doc.EffectiveTime()
		if last == nil || ts.After(*last) {
			t := ts
			last = &t
		}
	}
	summary.LastUploadAt = last
	return summary
}

func buildFilterOptions(snap Snapshot) FilterOptions {
	opts := FilterOptions{
		Frameworks:     []string{},
		BusinessUnits:  []string{},
		RiskCategories: []string{},
		RangeDays:      rangeDayOptions,
	}
	for _, fw := range snap.Frameworks {
		if fw.Active {
			opts.Frameworks = append(opts.Frameworks, fw.Name)
		}
	}
	sort.Strings(opts.Frameworks)
	return opts
}
