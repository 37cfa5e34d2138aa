package analyzer

import (
	"testing"

	"github.com/geo-optimizer/backend/provider"
)

func TestDomainAuthorityScore(t *testing.T) {
	tests := map[int]int{0: 0, 99: 0, 100: 1, 299: 1, 300: 2, 500: 3, 900: 5, 1000: 5, 5000: 5}
	for rank, want := range tests {
		if got := DomainAuthorityScore(rank); got != want {
			t.Errorf("DomainAuthorityScore(%d) = %d, want %d", rank, got, want)
		}
	}
}

func TestOrganicVisibilityScore(t *testing.T) {
	if got := OrganicVisibilityScore(nil); got != 0 {
		t.Errorf("nil keywords = %d, want 0", got)
	}
	tests := map[int]int{0: 1, 10: 1, 11: 2, 100: 2, 101: 3, 500: 3, 501: 4, 1000: 4, 1001: 5}
	for n, want := range tests {
		if got := OrganicVisibilityScore(intPtr(n)); got != want {
			t.Errorf("OrganicVisibilityScore(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestPageLoadScore(t *testing.T) {
	tests := map[float64]int{0: 4, 1999: 4, 2000: 3, 2999: 3, 3000: 2, 4999: 2, 5000: 1, 12000: 1}
	for ms, want := range tests {
		if got := PageLoadScore(ms); got != want {
			t.Errorf("PageLoadScore(%v) = %d, want %d", ms, got, want)
		}
	}
}

func TestOnPageSEOScore(t *testing.T) {
	tests := map[float64]int{0: 0, 9.9: 0, 10: 1, 50: 3, 87.4: 4, 90: 5, 100: 5}
	for s, want := range tests {
		if got := OnPageSEOScore(s); got != want {
			t.Errorf("OnPageSEOScore(%v) = %d, want %d", s, got, want)
		}
	}
}

func TestEvaluateMetricsInclusion(t *testing.T) {
	if checks := EvaluateMetrics(nil); len(checks) != 0 {
		t.Errorf("nil metrics produced %d checks", len(checks))
	}
	if checks := EvaluateMetrics(&provider.Metrics{}); len(checks) != 0 {
		t.Errorf("empty metrics produced %d checks", len(checks))
	}

	checks := EvaluateMetrics(&provider.Metrics{DomainRank: intPtr(1000)})
	if len(checks) != 2 {
		t.Fatalf("rank only: got %d checks, want 2", len(checks))
	}
	da := findCheck(t, checks, "Domain Authority")
	if da.Score != 5 || !da.Passed || da.Category != CategoryEEAT {
		t.Errorf("domain authority: %+v", da)
	}
	ov := findCheck(t, checks, "Organic Visibility")
	if ov.Score != 0 || ov.Passed || ov.Recommendation == "" {
		t.Errorf("organic visibility without keywords: %+v", ov)
	}

	checks = EvaluateMetrics(&provider.Metrics{OnPageScore: floatPtr(150), LoadTimeMs: floatPtr(6000)})
	if len(checks) != 2 {
		t.Fatalf("on-page only: got %d checks, want 2", len(checks))
	}
	load := findCheck(t, checks, "Page Load Performance")
	if load.Score != 1 || load.Passed || load.MaxScore != 4 || load.Category != CategoryTechnical {
		t.Errorf("slow page load: %+v", load)
	}
	onPage := findCheck(t, checks, "On-Page SEO Score")
	if onPage.Score != 5 || !onPage.Passed {
		t.Errorf("on-page score should clamp to max: %+v", onPage)
	}
}

func TestMetricCheckNearFullPasses(t *testing.T) {
	c := metricCheck("x", CategoryEEAT, 4, 5, "d", "r")
	if !c.Passed || c.Recommendation != "r" {
		t.Errorf("near-full metric check: %+v", c)
	}
	c = metricCheck("x", CategoryEEAT, 3, 5, "d", "r")
	if c.Passed || c.Status() != StatusWarning {
		t.Errorf("partial metric check: %+v", c)
	}
	c = metricCheck("x", CategoryEEAT, 0, 1, "d", "r")
	if c.Passed || c.Status() != StatusFailed {
		t.Errorf("zero score must fail even when max-1 is zero: %+v", c)
	}
}
