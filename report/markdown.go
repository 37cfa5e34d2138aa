package report

import (
	"io"
	"strconv"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

var statusIcons = map[analyzer.Status]string{
	analyzer.StatusPassed:  "✅",
	analyzer.StatusWarning: "⚠️",
	analyzer.StatusFailed:  "❌",
}

// Markdown writes a as a Markdown document.
func Markdown(w io.Writer, a *analyzer.Analysis) error {
	v := newView(a)
	md := markdown.NewMarkdown(w)

	md.H1("GEO Readiness Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", v.Title},
			{"URL", v.URL},
			{"Analyzed", v.Date},
			{"Score", strconv.Itoa(v.Score) + "/" + strconv.Itoa(v.MaxScore) + " (" + strconv.Itoa(v.Percentage) + "%)"},
			{"Grade", "**" + v.Grade + "** " + v.Label},
		},
	})
	md.PlainText("")
	writeVerdict(md, v)

	writeCategories(md, v)
	writeChecks(md, v)
	writeRecommendations(md, v)
	writeMetrics(md, v)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by GEO Optimizer*")
	return md.Build()
}

func writeVerdict(md *markdown.Markdown, v view) {
	switch v.Label {
	case analyzer.LabelExcellent:
		md.Tip("Excellent. This page is well prepared for AI-generated answers.")
	case analyzer.LabelGood:
		md.Note("Good. A few improvements would make this page easier for AI engines to cite.")
	case analyzer.LabelNeedsWork:
		md.Warningf("Needs work. %d checks need attention.", v.Summary.Warnings+v.Summary.Failed)
	default:
		md.Cautionf("Poor. %d of %d checks failed outright.", v.Summary.Failed, len(v.Checks))
	}
	md.PlainText("")
}

func writeCategories(md *markdown.Markdown, v view) {
	if len(v.Categories) == 0 {
		return
	}
	md.H2("Categories")
	md.PlainText("")

	rows := make([][]string, len(v.Categories))
	for i, c := range v.Categories {
		rows[i] = []string{c.Name, strconv.Itoa(c.Score) + "/" + strconv.Itoa(c.MaxScore), strconv.Itoa(c.Percentage) + "%"}
	}
	md.Table(markdown.TableSet{Header: []string{"Category", "Score", "Percentage"}, Rows: rows})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Check Results"),
		piechart.WithShowData(true),
	)
	if v.Summary.Passed > 0 {
		chart.LabelAndIntValue("Passed", uint64(v.Summary.Passed))
	}
	if v.Summary.Warnings > 0 {
		chart.LabelAndIntValue("Warnings", uint64(v.Summary.Warnings))
	}
	if v.Summary.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(v.Summary.Failed))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func writeChecks(md *markdown.Markdown, v view) {
	md.H2("Checks")
	md.PlainText("")
	if len(v.Checks) == 0 {
		md.PlainText("No checks were run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(v.Checks))
	for i, c := range v.Checks {
		rows[i] = []string{statusIcons[c.Status] + " " + c.StatusLabel, c.Name, c.Category, c.Score, c.Details}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Check", "Category", "Score", "Details"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeRecommendations(md *markdown.Markdown, v view) {
	var items []string
	for _, c := range v.Issues {
		if c.Recommendation != "" {
			items = append(items, "**"+c.Name+"**: "+c.Recommendation)
		}
	}
	if len(items) == 0 {
		return
	}
	md.H2("Recommendations")
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

func writeMetrics(md *markdown.Markdown, v view) {
	if len(v.Metrics) == 0 && len(v.Keywords) == 0 {
		return
	}
	md.H2("SEO Metrics")
	md.PlainText("")

	if len(v.Metrics) > 0 {
		rows := make([][]string, len(v.Metrics))
		for i, m := range v.Metrics {
			rows[i] = []string{m.Label, m.Value}
		}
		md.Table(markdown.TableSet{Header: []string{"Metric", "Value"}, Rows: rows})
		md.PlainText("")
	}

	if len(v.Keywords) > 0 {
		md.H3("Top Keywords")
		md.PlainText("")
		rows := make([][]string, len(v.Keywords))
		for i, k := range v.Keywords {
			rows[i] = []string{k.Keyword, k.Position, k.Volume}
		}
		md.Table(markdown.TableSet{Header: []string{"Keyword", "Position", "Search Volume"}, Rows: rows})
		md.PlainText("")
	}
}
