package analytics

import "time"

// Dashboard is the complete response for one aggregation request.
type Dashboard struct {
	GeneratedAt           time.Time           `json:"generatedAt"`
	Metrics               Metrics             `json:"metrics"`
	ComplianceBreakdown   Breakdown           `json:"complianceBreakdown"`
	RiskHeatmap           [][]int             `json:"riskHeatmap"`
	RiskDistribution      RiskDistribution    `json:"riskDistribution"`
	RiskHeatmapControls   []RiskCellControl   `json:"riskHeatmapControls"`
	RiskDrivers           []ReasonCount       `json:"riskDrivers"`
	ComplianceGaps        []ReasonCount       `json:"complianceGaps"`
	TrendsV2              TrendSeries         `json:"trendsV2"`
	FrameworkComparisonV2 []FrameworkProgress `json:"frameworkComparisonV2"`
	KPIs                  []KpiTile           `json:"kpis"`
	ExecutiveSummary      ExecutiveSummary    `json:"executiveSummary"`
	RecommendedActionsV2  []RecommendedAction `json:"recommendedActionsV2"`
	AuditSummary          AuditSummary        `json:"auditSummary"`
	UploadSummary         UploadSummary       `json:"uploadSummary"`
	FilterOptions         FilterOptions       `json:"filterOptions"`
	AppliedFilters        AppliedFilters      `json:"appliedFilters"`
}

// Metrics is the headline tile data: weighted coverage plus the four
// status counts and the evidence, audit and submission sub-objects.
type Metrics struct {
	TotalControls   int               `json:"totalControls"`
	CoveragePercent int               `json:"coveragePercent"`
	Compliant       int               `json:"compliant"`
	Partial         int               `json:"partial"`
	NotCompliant    int               `json:"notCompliant"`
	Unknown         int               `json:"unknown"`
	Evidence        EvidenceMetrics   `json:"evidence"`
	Audit           AuditSummary      `json:"audit"`
	Submissions     SubmissionMetrics `json:"submissions"`
}

// EvidenceMetrics summarizes evidence quality and freshness per control.
type EvidenceMetrics struct {
	Score     int             `json:"score"`
	High      int             `json:"high"`
	Medium    int             `json:"medium"`
	Low       int             `json:"low"`
	Freshness FreshnessCounts `json:"freshness"`
}

// FreshnessCounts buckets controls by the age of their most recent
// document.
type FreshnessCounts struct {
	Valid        int `json:"valid"`
	Outdated     int `json:"outdated"`
	ExpiringSoon int `json:"expiringSoon"`
	Expired      int `json:"expired"`
	Missing      int `json:"missing"`
}

// Breakdown is the four-way status split, counts plus independently
// rounded percentages.
type Breakdown struct {
	Compliant           int `json:"compliant"`
	Partial             int `json:"partial"`
	NotCompliant        int `json:"notCompliant"`
	Unknown             int `json:"unknown"`
	CompliantPercent    int `json:"compliantPercent"`
	PartialPercent      int `json:"partialPercent"`
	NotCompliantPercent int `json:"notCompliantPercent"`
	UnknownPercent      int `json:"unknownPercent"`
}

// RiskDistribution totals the heatmap buckets. Total always equals the
// in-scope control count.
type RiskDistribution struct {
	High     int    `json:"high"`
	Medium   int    `json:"medium"`
	Low      int    `json:"low"`
	Total    int    `json:"total"`
	Exposure string `json:"exposure"`
}

// RiskCellControl locates one control in the risk matrix.
type RiskCellControl struct {
	ControlID  string `json:"controlId"`
	Code       string `json:"code"`
	Title      string `json:"title"`
	Impact     int    `json:"impact"`
	Likelihood int    `json:"likelihood"`
	Score      int    `json:"score"`
	Bucket     string `json:"bucket"`
}

// ReasonCount is one classified gap or driver with its tally.
type ReasonCount struct {
	ReasonID string `json:"reasonId"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

// TrendSeries carries the three aligned point-in-time series.
type TrendSeries struct {
	Labels     []string  `json:"labels"`
	RiskScore  []int     `json:"riskScore"`
	Compliance []int     `json:"compliance"`
	MTTRDays   []float64 `json:"mttrDays"`
}

// FrameworkProgress is the trailing month-end compliance series for one
// comparison target.
type FrameworkProgress struct {
	Framework  string   `json:"framework"`
	Labels     []string `json:"labels"`
	Compliance []int    `json:"compliance"`
}

// KpiTile is one display-ready dashboard tile.
type KpiTile struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Note      string `json:"note"`
	Severity  string `json:"severity"`
	Drilldown string `json:"drilldown"`
}

// ExecutiveSummary is the headline plus highlight strings.
type ExecutiveSummary struct {
	Headline   string   `json:"headline"`
	Highlights []string `json:"highlights"`
}

// RecommendedAction is one prioritized remediation action.
type RecommendedAction struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// AuditSummary summarizes the evaluation history.
type AuditSummary struct {
	TotalEvaluations  int        `json:"totalEvaluations"`
	EvaluatedControls int        `json:"evaluatedControls"`
	CoveragePercent   int        `json:"coveragePercent"`
	LastEvaluationAt  *time.Time `json:"lastEvaluationAt,omitempty"`
	MTTRDays          float64    `json:"mttrDays"`
}

// SubmissionMetrics is the submission sub-object of Metrics.
type SubmissionMetrics struct {
	TotalDocuments int        `json:"totalDocuments"`
	Matched        int        `json:"matched"`
	Unmatched      int        `json:"unmatched"`
	Reviewed       int        `json:"reviewed"`
	Pending        int        `json:"pending"`
	LastUploadAt   *time.Time `json:"lastUploadAt,omitempty"`
}

// UploadSummary summarizes the evidence store contents.
type UploadSummary struct {
	TotalDocuments int            `json:"totalDocuments"`
	Matched        int            `json:"matched"`
	Unmatched      int            `json:"unmatched"`
	Reviewed       int            `json:"reviewed"`
	Pending        int            `json:"pending"`
	ByType         map[string]int `json:"byType"`
	LastUploadAt   *time.Time     `json:"lastUploadAt,omitempty"`
}

// FilterOptions lists the selectable filter values. Business units and
// risk categories are pass-through for now; no catalog populates them yet.
type FilterOptions struct {
	Frameworks     []string `json:"frameworks"`
	BusinessUnits  []string `json:"businessUnits"`
	RiskCategories []string `json:"riskCategories"`
	RangeDays      []int    `json:"rangeDays"`
}

// AppliedFilters echoes the request filters after defaulting and clamping.
type AppliedFilters struct {
	Framework    string `json:"framework"`
	BusinessUnit string `json:"businessUnit"`
	RiskCategory string `json:"riskCategory"`
	RangeDays    int    `json:"rangeDays"`
}
