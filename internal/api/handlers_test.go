package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lvonguyen/complyforge/internal/analytics"
	"github.com/lvonguyen/complyforge/internal/catalog"
	"github.com/lvonguyen/complyforge/internal/store"
)

type stubFetcher struct {
	snap analytics.Snapshot
	err  error
}

func (s *stubFetcher) Snapshot(ctx context.Context, framework string) (analytics.Snapshot, error) {
	if s.err != nil {
		return analytics.Snapshot{}, s.err
	}
	return s.snap, nil
}

func testSnapshot() analytics.Snapshot {
	now := time.Now().UTC()
	return analytics.Snapshot{
		Framework: "SOC2",
		Frameworks: []catalog.Framework{
			{Name: "SOC2", Active: true, UpdatedAt: now.AddDate(0, 0, -30)},
		},
		Controls: []catalog.Control{
			{ID: "ctl-1", Code: "AC-01", Title: "Access control", OwnerRole: "lead",
				Refs: []catalog.FrameworkRef{{Framework: "SOC2", RefCode: "CC6.1"}}},
			{ID: "ctl-2", Code: "AC-02", Title: "Log retention",
				Refs: []catalog.FrameworkRef{{Framework: "SOC2", RefCode: "CC7.2"}}},
		},
		Events: []catalog.EvaluationEvent{
			{ControlID: "ctl-1", Status: catalog.StatusCompliant, Timestamp: now.AddDate(0, 0, -5)},
			{ControlID: "ctl-2", Status: catalog.StatusNotCompliant, Timestamp: now.AddDate(0, 0, -3)},
		},
	}
}

func testHandler(fetcher SnapshotFetcher) *Handler {
	opts := analytics.DefaultOptions()
	return NewHandler(fetcher, analytics.New(opts, nil), opts, nil, nil, nil)
}

func getDashboard(t *testing.T, h *Handler, url string) (*httptest.ResponseRecorder, *analytics.Dashboard) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return rec, nil
	}
	var d analytics.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, &d
}

func TestHandleDashboard(t *testing.T) {
	h := testHandler(&stubFetcher{snap: testSnapshot()})
	rec, d := getDashboard(t, h, "/dashboard?rangeDays=60")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
	if rec.Header().Get("X-Report-ID") == "" {
		t.Error("missing X-Report-ID header")
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("X-Cache = %q, want miss", rec.Header().Get("X-Cache"))
	}

	if d.Metrics.TotalControls != 2 {
		t.Errorf("total controls = %d, want 2", d.Metrics.TotalControls)
	}
	if d.AppliedFilters.Framework != "SOC2" || d.AppliedFilters.RangeDays != 60 {
		t.Errorf("applied filters = %+v", d.AppliedFilters)
	}
	if len(d.TrendsV2.Labels) != 60 {
		t.Errorf("trend samples = %d, want 60", len(d.TrendsV2.Labels))
	}
}

func TestHandleDashboardRangeDefaulting(t *testing.T) {
	h := testHandler(&stubFetcher{snap: testSnapshot()})
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing", "/dashboard", 90},
		{"malformed", "/dashboard?rangeDays=abc", 90},
		{"below minimum", "/dashboard?rangeDays=10", 30},
		{"above maximum", "/dashboard?rangeDays=400", 365},
		{"in range", "/dashboard?rangeDays=180", 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, d := getDashboard(t, h, tt.url)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if d.AppliedFilters.RangeDays != tt.want {
				t.Errorf("applied rangeDays = %d, want %d", d.AppliedFilters.RangeDays, tt.want)
			}
		})
	}
}

func TestHandleDashboardUpstreamFailure(t *testing.T) {
	h := testHandler(&stubFetcher{err: fmt.Errorf("%w: history store down", store.ErrSnapshotUnavailable)})
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] != "unable to compute dashboard" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestHandleDashboardUnexpectedFailure(t *testing.T) {
	h := testHandler(&stubFetcher{err: errors.New("boom")})
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHandleDashboardEmptyCatalog(t *testing.T) {
	h := testHandler(&stubFetcher{snap: analytics.Snapshot{}})
	rec, d := getDashboard(t, h, "/dashboard")

	if rec.Code != http.StatusOK {
		t.Fatalf("empty catalog must still return 200, got %d", rec.Code)
	}
	if d.Metrics.TotalControls != 0 {
		t.Errorf("total controls = %d, want 0", d.Metrics.TotalControls)
	}
	if d.ComplianceGaps == nil {
		t.Error("gaps must decode as an empty list")
	}
}

func TestParseFiltersPassThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard?framework=ISO27001&businessUnit=EMEA&riskCategory=operational", nil)
	got := parseFilters(req, analytics.DefaultOptions())
	if got.Framework != "ISO27001" || got.BusinessUnit != "EMEA" || got.RiskCategory != "operational" {
		t.Errorf("parsed filters = %+v", got)
	}
	if got.RangeDays != 90 {
		t.Errorf("rangeDays = %d, want default 90", got.RangeDays)
	}
}
