package analyzer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/geo-optimizer/backend/provider"
)

func TestLetterGrade(t *testing.T) {
	tests := map[int]string{
		100: "A+", 90: "A+", 89: "A", 80: "A", 79: "B", 70: "B",
		69: "C", 60: "C", 59: "D", 50: "D", 49: "F", 0: "F",
	}
	for pct, want := range tests {
		if got := LetterGrade(pct); got != want {
			t.Errorf("LetterGrade(%d) = %s, want %s", pct, got, want)
		}
	}
}

func TestLetterGradeMonotonic(t *testing.T) {
	rank := map[string]int{"F": 0, "D": 1, "C": 2, "B": 3, "A": 4, "A+": 5}
	prev := -1
	for pct := 0; pct <= 100; pct++ {
		r, ok := rank[LetterGrade(pct)]
		if !ok {
			t.Fatalf("unknown grade for %d", pct)
		}
		if r < prev {
			t.Fatalf("grade decreased at %d", pct)
		}
		prev = r
	}
}

func TestScoreLabel(t *testing.T) {
	tests := map[int]string{
		100: "Excellent", 90: "Excellent", 89: "Good", 70: "Good",
		69: "Needs Work", 40: "Needs Work", 39: "Poor", 0: "Poor",
	}
	for pct, want := range tests {
		if got := ScoreLabel(pct); got != want {
			t.Errorf("ScoreLabel(%d) = %s, want %s", pct, got, want)
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, max, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{117, 119, 98},
		{100, 100, 100},
	}
	for _, tt := range tests {
		if got := Percentage(tt.score, tt.max); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.score, tt.max, got, tt.want)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	a := Aggregate("https://example.com", "", nil, nil)
	if a.MaxScore != 0 || a.Percentage != 0 || a.Grade != "F" || a.Label != "Poor" {
		t.Errorf("unexpected empty aggregate: %+v", a)
	}
	if a.Title != FallbackTitle {
		t.Errorf("title = %q, want fallback", a.Title)
	}
	if a.Checks == nil || len(a.Categories) != 0 {
		t.Error("empty aggregate should have an empty, non-nil check list and no categories")
	}
}

func TestAggregateSummaryPartition(t *testing.T) {
	checks := []Check{
		{Name: "full", Category: CategorySchema, Passed: true, Score: 8, MaxScore: 8},
		{Name: "partial", Category: CategoryContent, Score: 4, MaxScore: 8},
		{Name: "zero", Category: CategoryContent, Score: 0, MaxScore: 5},
		{Name: "near full metric", Category: CategoryEEAT, Passed: true, Score: 4, MaxScore: 5},
	}
	a := Aggregate("https://example.com", "T", checks, nil)
	want := Summary{Passed: 2, Warnings: 1, Failed: 1}
	if a.Summary != want {
		t.Errorf("summary = %+v, want %+v", a.Summary, want)
	}
	if a.OverallScore != 16 || a.MaxScore != 26 {
		t.Errorf("score = %d/%d, want 16/26", a.OverallScore, a.MaxScore)
	}
	wantCats := []CategoryScore{
		{Category: CategorySchema, Score: 8, MaxScore: 8, Percentage: 100},
		{Category: CategoryContent, Score: 4, MaxScore: 13, Percentage: 31},
		{Category: CategoryEEAT, Score: 4, MaxScore: 5, Percentage: 80},
	}
	if !reflect.DeepEqual(a.Categories, wantCats) {
		t.Errorf("categories = %+v, want %+v", a.Categories, wantCats)
	}
}

func TestAnalyzeHTMLInvariants(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		html    string
		metrics *provider.Metrics
	}{
		{"rich", richURL, richHTML, nil},
		{"rich with metrics", richURL, richHTML, fullMetrics()},
		{"bare", "http://example.com", bareHTML, nil},
		{"partial", richURL, `<title>Short</title><body><h1>x</h1><a href="https://o.org">o</a></body>`, &provider.Metrics{LoadTimeMs: floatPtr(4200)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := analyzeHTML(tc.url, tc.html, tc.metrics)
			if err != nil {
				t.Fatal(err)
			}
			score, max := 0, 0
			for _, c := range a.Checks {
				score += c.Score
				max += c.MaxScore
				if c.Score < 0 || c.Score > c.MaxScore {
					t.Errorf("%s: score %d outside [0,%d]", c.Name, c.Score, c.MaxScore)
				}
				if (c.Recommendation != "") != (c.Score < c.MaxScore) {
					t.Errorf("%s: recommendation presence does not match score %d/%d", c.Name, c.Score, c.MaxScore)
				}
				if c.Passed && c.Score == 0 {
					t.Errorf("%s: passed with zero score", c.Name)
				}
			}
			if a.OverallScore != score || a.MaxScore != max {
				t.Errorf("totals %d/%d do not match checks %d/%d", a.OverallScore, a.MaxScore, score, max)
			}
			s := a.Summary
			if s.Passed+s.Warnings+s.Failed != len(a.Checks) {
				t.Errorf("summary %+v does not partition %d checks", s, len(a.Checks))
			}
			if a.Grade != LetterGrade(Percentage(score, max)) {
				t.Errorf("grade %s does not follow percentage", a.Grade)
			}
		})
	}
}

func TestAnalyzeHTMLScores(t *testing.T) {
	rich, _ := analyzeHTML(richURL, richHTML, nil)
	if rich.OverallScore != 100 || rich.MaxScore != 100 || rich.Grade != "A+" || rich.Label != "Excellent" {
		t.Errorf("rich page: %d/%d %s %s", rich.OverallScore, rich.MaxScore, rich.Grade, rich.Label)
	}
	if rich.Title != "What Is Generative Engine Optimization? A Guide" {
		t.Errorf("title = %q", rich.Title)
	}

	withMetrics, _ := analyzeHTML(richURL, richHTML, fullMetrics())
	if withMetrics.OverallScore != 117 || withMetrics.MaxScore != 119 || withMetrics.Percentage != 98 {
		t.Errorf("rich page with metrics: %d/%d (%d%%)", withMetrics.OverallScore, withMetrics.MaxScore, withMetrics.Percentage)
	}
	last := withMetrics.Checks[len(withMetrics.Checks)-4:]
	names := []string{"Domain Authority", "Organic Visibility", "Page Load Performance", "On-Page SEO Score"}
	for i, c := range last {
		if c.Name != names[i] {
			t.Errorf("metrics check %d = %s, want %s", i, c.Name, names[i])
		}
	}

	bare, _ := analyzeHTML("http://example.com", bareHTML, nil)
	if bare.OverallScore != 0 || bare.Grade != "F" || bare.Label != "Poor" || bare.Title != FallbackTitle {
		t.Errorf("bare page: %+v", bare)
	}
	if bare.Summary.Failed != len(bare.Checks) {
		t.Errorf("bare page should fail every check: %+v", bare.Summary)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	first, _ := analyzeHTML(richURL, richHTML, fullMetrics())
	for i := 0; i < 5; i++ {
		again, _ := analyzeHTML(richURL, richHTML, fullMetrics())
		a, _ := json.Marshal(first)
		b, _ := json.Marshal(again)
		if string(a) != string(b) {
			t.Fatalf("run %d differs:\n%s\n%s", i, a, b)
		}
	}
}
