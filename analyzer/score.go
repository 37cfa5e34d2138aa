package analyzer

import (
	"math"
	"time"

	"github.com/geo-optimizer/backend/provider"
)

// Evaluate runs every HTML check and then the metrics checks whose metric is
// present. It is a pure function of its inputs.
func Evaluate(p *Page, m *provider.Metrics) []Check {
	return append(EvaluateHTML(p), EvaluateMetrics(m)...)
}

// Aggregate reduces checks into the final analysis.
func Aggregate(pageURL, title string, checks []Check, m *provider.Metrics) *Analysis {
	if title == "" {
		title = FallbackTitle
	}
	a := &Analysis{
		URL:        pageURL,
		Title:      title,
		Checks:     checks,
		SEOMetrics: m,
	}
	if a.Checks == nil {
		a.Checks = []Check{}
	}
	for _, c := range checks {
		a.OverallScore += c.Score
		a.MaxScore += c.MaxScore
		switch c.Status() {
		case StatusPassed:
			a.Summary.Passed++
		case StatusWarning:
			a.Summary.Warnings++
		default:
			a.Summary.Failed++
		}
	}
	a.Percentage = Percentage(a.OverallScore, a.MaxScore)
	a.Grade = LetterGrade(a.Percentage)
	a.Label = ScoreLabel(a.Percentage)
	a.Categories = CategoryScores(checks)
	return a
}

// Stamp sets the analysis time. Kept apart from Aggregate so aggregation
// stays deterministic.
func (a *Analysis) Stamp(t time.Time) *Analysis {
	a.AnalyzedAt = t.UTC()
	return a
}

// Percentage returns round(100*score/max), or 0 when max is not positive.
func Percentage(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(max)))
}

// LetterGrade maps a percentage to A+, A, B, C, D or F.
func LetterGrade(pct int) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}

// Score labels returned by ScoreLabel.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelNeedsWork = "Needs Work"
	LabelPoor      = "Poor"
)

// ScoreLabel maps a percentage to the display wording used in reports.
// Bands differ from LetterGrade.
func ScoreLabel(pct int) string {
	switch {
	case pct >= 90:
		return LabelExcellent
	case pct >= 70:
		return LabelGood
	case pct >= 40:
		return LabelNeedsWork
	default:
		return LabelPoor
	}
}

// CategoryScores subtotals checks per category in display order. Categories
// without checks are omitted.
func CategoryScores(checks []Check) []CategoryScore {
	totals := map[Category]*CategoryScore{}
	for _, c := range checks {
		cs, ok := totals[c.Category]
		if !ok {
			cs = &CategoryScore{Category: c.Category}
			totals[c.Category] = cs
		}
		cs.Score += c.Score
		cs.MaxScore += c.MaxScore
	}
	out := make([]CategoryScore, 0, len(totals))
	for _, cat := range Categories {
		if cs, ok := totals[cat]; ok {
			cs.Percentage = Percentage(cs.Score, cs.MaxScore)
			out = append(out, *cs)
		}
	}
	return out
}
