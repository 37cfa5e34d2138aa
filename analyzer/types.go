package analyzer

import (
	"time"

	"github.com/geo-optimizer/backend/provider"
)

// Category groups checks and determines their weight pool.
type Category string

const (
	CategorySchema    Category = "Schema Markup"
	CategoryContent   Category = "Content Structure"
	CategoryEEAT      Category = "E-E-A-T Signals"
	CategoryTechnical Category = "Meta & Technical"
	CategorySnippet   Category = "AI Snippet Optimization"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategorySchema,
	CategoryContent,
	CategoryEEAT,
	CategoryTechnical,
	CategorySnippet,
}

// Check is one rubric item
type Check struct {
	Name           string   `json:"name" yaml:"name"`
	Category       Category `json:"category" yaml:"category"`
	Passed         bool     `json:"passed" yaml:"passed"`
	Score          int      `json:"score" yaml:"score"`
	MaxScore       int      `json:"maxScore" yaml:"maxScore"`
	Details        string   `json:"details" yaml:"details"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// Status is the display bucket of a check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// Status places the check in exactly one summary bucket.
func (c Check) Status() Status {
	switch {
	case c.Passed:
		return StatusPassed
	case c.Score > 0:
		return StatusWarning
	default:
		return StatusFailed
	}
}

// Summary counts checks per status
type Summary struct {
	Passed   int `json:"passed" yaml:"passed"`
	Failed   int `json:"failed" yaml:"failed"`
	Warnings int `json:"warnings" yaml:"warnings"`
}

// CategoryScore is the subtotal for a single category.
type CategoryScore struct {
	Category   Category `json:"category" yaml:"category"`
	Score      int      `json:"score" yaml:"score"`
	MaxScore   int      `json:"maxScore" yaml:"maxScore"`
	Percentage int      `json:"percentage" yaml:"percentage"`
}

// Analysis represents the complete GEO readiness analysis of a webpage
type Analysis struct {
	URL          string            `json:"url" yaml:"url"`
	Title        string            `json:"title" yaml:"title"`
	OverallScore int               `json:"overallScore" yaml:"overallScore"`
	MaxScore     int               `json:"maxScore" yaml:"maxScore"`
	Percentage   int               `json:"percentage" yaml:"percentage"`
	Grade        string            `json:"grade" yaml:"grade"`
	Label        string            `json:"label" yaml:"label"`
	Checks       []Check           `json:"checks" yaml:"checks"`
	Categories   []CategoryScore   `json:"categories" yaml:"categories"`
	Summary      Summary           `json:"summary" yaml:"summary"`
	SEOMetrics   *provider.Metrics `json:"seoMetrics,omitempty" yaml:"seoMetrics,omitempty"`
	AnalyzedAt   time.Time         `json:"analyzedAt" yaml:"analyzedAt"`
}
