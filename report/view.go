package report

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/geo-optimizer/backend/provider"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "January 2, 2006 15:04 MST"

var (
	printer      = message.NewPrinter(language.English)
	unsafeChars  = regexp.MustCompile(`[^a-z0-9.-]+`)
	statusLabels = map[analyzer.Status]string{
		analyzer.StatusPassed:  "Passed",
		analyzer.StatusWarning: "Warning",
		analyzer.StatusFailed:  "Failed",
	}
)

type rgb struct{ R, G, B int }

func (c rgb) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

var (
	colorGood    = rgb{22, 163, 74}
	colorWarning = rgb{217, 119, 6}
	colorBad     = rgb{220, 38, 38}
	colorMuted   = rgb{107, 114, 128}
)

// percentColor shades a percentage green, amber or red.
func percentColor(pct int) rgb {
	switch {
	case pct >= 80:
		return colorGood
	case pct >= 50:
		return colorWarning
	default:
		return colorBad
	}
}

func statusColor(s analyzer.Status) rgb {
	switch s {
	case analyzer.StatusPassed:
		return colorGood
	case analyzer.StatusWarning:
		return colorWarning
	default:
		return colorBad
	}
}

// view is the renderer-neutral projection of an Analysis.
type view struct {
	URL        string
	Title      string
	Date       string
	Score      int
	MaxScore   int
	Percentage int
	Grade      string
	Label      string
	GradeColor string
	Summary    analyzer.Summary
	Categories []categoryView
	Checks     []checkView
	Issues     []checkView
	Metrics    []metricRow
	Keywords   []keywordRow
}

type categoryView struct {
	Name       string
	Score      int
	MaxScore   int
	Percentage int
	Color      string
}

type checkView struct {
	Name           string
	Category       string
	Status         analyzer.Status
	StatusLabel    string
	Color          string
	Score          string
	Details        string
	Recommendation string
}

type metricRow struct {
	Label string
	Value string
}

type keywordRow struct {
	Keyword  string
	Position string
	Volume   string
}

func newView(a *analyzer.Analysis) view {
	date := a.AnalyzedAt
	if date.IsZero() {
		date = time.Now()
	}
	v := view{
		URL:        a.URL,
		Title:      a.Title,
		Date:       date.UTC().Format(dateLayout),
		Score:      a.OverallScore,
		MaxScore:   a.MaxScore,
		Percentage: a.Percentage,
		Grade:      a.Grade,
		Label:      a.Label,
		GradeColor: percentColor(a.Percentage).Hex(),
		Summary:    a.Summary,
	}
	for _, c := range a.Categories {
		v.Categories = append(v.Categories, categoryView{
			Name:       string(c.Category),
			Score:      c.Score,
			MaxScore:   c.MaxScore,
			Percentage: c.Percentage,
			Color:      percentColor(c.Percentage).Hex(),
		})
	}
	for _, c := range a.Checks {
		cv := checkView{
			Name:           c.Name,
			Category:       string(c.Category),
			Status:         c.Status(),
			StatusLabel:    statusLabels[c.Status()],
			Color:          statusColor(c.Status()).Hex(),
			Score:          fmt.Sprintf("%d/%d", c.Score, c.MaxScore),
			Details:        c.Details,
			Recommendation: c.Recommendation,
		}
		v.Checks = append(v.Checks, cv)
		if cv.Status != analyzer.StatusPassed {
			v.Issues = append(v.Issues, cv)
		}
	}
	v.Metrics, v.Keywords = metricRows(a.SEOMetrics)
	return v
}

func metricRows(m *provider.Metrics) ([]metricRow, []keywordRow) {
	if m.Empty() {
		return nil, nil
	}
	var rows []metricRow
	if m.DomainRank != nil {
		rows = append(rows, metricRow{"Domain Rank", printer.Sprintf("%d", *m.DomainRank)})
	}
	if m.OrganicTraffic != nil {
		rows = append(rows, metricRow{"Est. Organic Traffic", printer.Sprintf("%.0f visits/mo", *m.OrganicTraffic)})
	}
	if m.OrganicKeywords != nil {
		rows = append(rows, metricRow{"Ranking Keywords", printer.Sprintf("%d", *m.OrganicKeywords)})
	}
	if m.OnPageScore != nil {
		rows = append(rows, metricRow{"On-Page Score", printer.Sprintf("%.1f/100", *m.OnPageScore)})
	}
	if m.LoadTimeMs != nil {
		rows = append(rows, metricRow{"Page Load Time", printer.Sprintf("%.0f ms", *m.LoadTimeMs)})
	}

	keywords := make([]keywordRow, 0, len(m.TopKeywords))
	for _, k := range m.TopKeywords {
		keywords = append(keywords, keywordRow{
			Keyword:  k.Keyword,
			Position: printer.Sprintf("#%d", k.Position),
			Volume:   printer.Sprintf("%d", k.SearchVolume),
		})
	}
	return rows, keywords
}

// Filename names the PDF attachment for a, e.g.
// geo-report-example.com-2026-03-01.pdf.
func Filename(a *analyzer.Analysis, now time.Time) string {
	domain := "site"
	if u, err := url.Parse(a.URL); err == nil && u.Hostname() != "" {
		domain = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	}
	domain = strings.Trim(unsafeChars.ReplaceAllString(domain, "-"), "-.")
	if domain == "" {
		domain = "site"
	}
	return fmt.Sprintf("geo-report-%s-%s.pdf", domain, now.Format("2006-01-02"))
}
