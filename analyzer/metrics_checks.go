package analyzer

import (
	"fmt"
	"math"

	"github.com/geo-optimizer/backend/provider"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// metricsCheckFunc returns a check and whether its metric was present.
type metricsCheckFunc func(m *provider.Metrics) (Check, bool)

// metricsChecks run after the provider call resolves and are appended last.
var metricsChecks = []metricsCheckFunc{
	checkDomainAuthority,
	checkOrganicVisibility,
	checkPageLoad,
	checkOnPageScore,
}

var numberPrinter = message.NewPrinter(language.English)

// EvaluateMetrics returns the checks whose metric is present in m.
func EvaluateMetrics(m *provider.Metrics) []Check {
	if m == nil {
		return nil
	}
	var checks []Check
	for _, fn := range metricsChecks {
		if c, ok := fn(m); ok {
			checks = append(checks, c)
		}
	}
	return checks
}

// metricCheck passes on full or near-full credit (one point short).
func metricCheck(name string, cat Category, score, max int, details, rec string) Check {
	score = clamp(score, 0, max)
	c := Check{Name: name, Category: cat, Score: score, MaxScore: max, Passed: score > 0 && score >= max-1, Details: details}
	if score < max {
		c.Recommendation = rec
	}
	return c
}

func round(f float64) int { return int(math.Round(f)) }

// DomainAuthorityScore is min(5, round(rank/200)).
func DomainAuthorityScore(rank int) int {
	return min(5, round(float64(rank)/200))
}

// OrganicVisibilityScore bands the ranking keyword count.
func OrganicVisibilityScore(keywords *int) int {
	if keywords == nil {
		return 0
	}
	switch k := *keywords; {
	case k > 1000:
		return 5
	case k > 500:
		return 4
	case k > 100:
		return 3
	case k > 10:
		return 2
	default:
		return 1
	}
}

// PageLoadScore bands the load time in milliseconds.
func PageLoadScore(ms float64) int {
	switch {
	case ms < 2000:
		return 4
	case ms < 3000:
		return 3
	case ms < 5000:
		return 2
	default:
		return 1
	}
}

// OnPageSEOScore is round(onPageScore/20).
func OnPageSEOScore(score float64) int {
	return round(score / 20)
}

func checkDomainAuthority(m *provider.Metrics) (Check, bool) {
	if m.DomainRank == nil {
		return Check{}, false
	}
	return metricCheck("Domain Authority", CategoryEEAT, DomainAuthorityScore(*m.DomainRank), 5,
		numberPrinter.Sprintf("Domain rank is %d", *m.DomainRank),
		"Earn links from authoritative sites to raise domain authority"), true
}

// Organic Visibility rides on the rank overview facet; a missing keyword
// count scores zero instead of dropping the check.
func checkOrganicVisibility(m *provider.Metrics) (Check, bool) {
	if m.DomainRank == nil && m.OrganicKeywords == nil {
		return Check{}, false
	}
	details := "No organic keyword data"
	if m.OrganicKeywords != nil {
		details = numberPrinter.Sprintf("Ranking for %d organic keywords", *m.OrganicKeywords)
		if m.OrganicTraffic != nil {
			details += numberPrinter.Sprintf(" with ~%.0f estimated monthly visits", *m.OrganicTraffic)
		}
	}
	return metricCheck("Organic Visibility", CategoryEEAT, OrganicVisibilityScore(m.OrganicKeywords), 5,
		details,
		"Expand topical coverage to rank for more search queries"), true
}

func checkPageLoad(m *provider.Metrics) (Check, bool) {
	if m.LoadTimeMs == nil {
		return Check{}, false
	}
	return metricCheck("Page Load Performance", CategoryTechnical, PageLoadScore(*m.LoadTimeMs), 4,
		fmt.Sprintf("Page loaded in %.2fs", *m.LoadTimeMs/1000),
		"Reduce page load time below 2 seconds (compress assets, cache, use a CDN)"), true
}

func checkOnPageScore(m *provider.Metrics) (Check, bool) {
	if m.OnPageScore == nil {
		return Check{}, false
	}
	return metricCheck("On-Page SEO Score", CategoryTechnical, OnPageSEOScore(*m.OnPageScore), 5,
		fmt.Sprintf("On-page score is %.1f/100", *m.OnPageScore),
		"Fix the technical on-page issues flagged by the crawler"), true
}
