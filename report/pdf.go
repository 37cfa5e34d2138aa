package report

import (
	"bytes"
	"fmt"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
	barWidth   = 80.0
)

type pdfRenderer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
}

// PDF renders a as a printable A4 report.
func PDF(a *analyzer.Analysis) ([]byte, error) {
	v := newView(a)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("GEO Readiness Report", true)
	pdf.SetCreator("GEO Optimizer", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AliasNbPages("")

	pageWidth, _ := pdf.GetPageSize()
	r := &pdfRenderer{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: pageWidth - 2*pageMargin,
	}
	pdf.SetFooterFunc(r.footer)

	pdf.AddPage()
	r.header(v)
	r.overview(v)
	r.categories(v)
	r.checks(v)
	r.metrics(v)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) color(c rgb) {
	r.pdf.SetTextColor(c.R, c.G, c.B)
}

func (r *pdfRenderer) heading(text string) {
	r.pdf.Ln(4)
	r.pdf.SetFont("Helvetica", "B", 14)
	r.color(rgb{17, 24, 39})
	r.pdf.CellFormat(r.width, 9, r.tr(text), "B", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *pdfRenderer) header(v view) {
	r.pdf.SetFont("Helvetica", "B", 20)
	r.color(rgb{17, 24, 39})
	r.pdf.CellFormat(r.width, 10, r.tr("GEO Readiness Report"), "", 1, "L", false, 0, "")

	r.pdf.SetFont("Helvetica", "", 10)
	r.color(colorMuted)
	r.pdf.MultiCell(r.width, 5, r.tr(v.Title), "", "L", false)
	r.pdf.MultiCell(r.width, 5, r.tr(v.URL), "", "L", false)
	r.pdf.CellFormat(r.width, 5, r.tr("Analyzed "+v.Date), "", 1, "L", false, 0, "")
}

func (r *pdfRenderer) overview(v view) {
	r.heading("Overall Score")

	grade := percentColor(v.Percentage)
	r.pdf.SetFont("Helvetica", "B", 28)
	r.color(grade)
	r.pdf.CellFormat(30, 14, r.tr(v.Grade), "", 0, "C", false, 0, "")

	r.pdf.SetFont("Helvetica", "B", 16)
	r.pdf.CellFormat(50, 14, fmt.Sprintf("%d/%d (%d%%)", v.Score, v.MaxScore, v.Percentage), "", 0, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 12)
	r.color(colorMuted)
	r.pdf.CellFormat(0, 14, r.tr(v.Label), "", 1, "L", false, 0, "")

	r.pdf.SetFont("Helvetica", "", 10)
	r.color(colorGood)
	r.pdf.CellFormat(40, lineHeight, fmt.Sprintf("%d passed", v.Summary.Passed), "", 0, "L", false, 0, "")
	r.color(colorWarning)
	r.pdf.CellFormat(40, lineHeight, fmt.Sprintf("%d warnings", v.Summary.Warnings), "", 0, "L", false, 0, "")
	r.color(colorBad)
	r.pdf.CellFormat(40, lineHeight, fmt.Sprintf("%d failed", v.Summary.Failed), "", 1, "L", false, 0, "")
}

func (r *pdfRenderer) categories(v view) {
	if len(v.Categories) == 0 {
		return
	}
	r.heading("Category Breakdown")

	for _, c := range v.Categories {
		r.pdf.SetFont("Helvetica", "", 10)
		r.color(rgb{31, 41, 55})
		r.pdf.CellFormat(60, lineHeight, r.tr(c.Name), "", 0, "L", false, 0, "")

		x, y := r.pdf.GetX(), r.pdf.GetY()
		r.pdf.SetFillColor(229, 231, 235)
		r.pdf.Rect(x, y+1.5, barWidth, lineHeight-3, "F")
		if c.Percentage > 0 {
			fill := percentColor(c.Percentage)
			r.pdf.SetFillColor(fill.R, fill.G, fill.B)
			r.pdf.Rect(x, y+1.5, barWidth*float64(c.Percentage)/100, lineHeight-3, "F")
		}
		r.pdf.SetX(x + barWidth + 4)
		r.pdf.CellFormat(0, lineHeight, fmt.Sprintf("%d/%d (%d%%)", c.Score, c.MaxScore, c.Percentage), "", 1, "L", false, 0, "")
	}
}

func (r *pdfRenderer) checks(v view) {
	r.heading("Checks")

	category := ""
	for _, c := range v.Checks {
		if c.Category != category {
			category = c.Category
			r.pdf.Ln(1)
			r.pdf.SetFont("Helvetica", "B", 11)
			r.color(rgb{55, 65, 81})
			r.pdf.CellFormat(r.width, 7, r.tr(category), "", 1, "L", false, 0, "")
		}

		status := statusColor(c.Status)
		r.pdf.SetFont("Helvetica", "B", 8)
		r.pdf.SetFillColor(status.R, status.G, status.B)
		r.pdf.SetTextColor(255, 255, 255)
		r.pdf.CellFormat(18, lineHeight-1, r.tr(c.StatusLabel), "", 0, "C", true, 0, "")
		r.pdf.CellFormat(2, lineHeight-1, "", "", 0, "L", false, 0, "")

		r.pdf.SetFont("Helvetica", "B", 10)
		r.color(rgb{17, 24, 39})
		r.pdf.CellFormat(r.width-40, lineHeight-1, r.tr(c.Name), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(20, lineHeight-1, c.Score, "", 1, "R", false, 0, "")

		r.pdf.SetFont("Helvetica", "", 9)
		r.color(colorMuted)
		r.pdf.SetX(pageMargin + 20)
		r.pdf.MultiCell(r.width-20, 4.5, r.tr(c.Details), "", "L", false)
		if c.Recommendation != "" {
			r.pdf.SetFont("Helvetica", "I", 9)
			r.color(rgb{30, 64, 175})
			r.pdf.SetX(pageMargin + 20)
			r.pdf.MultiCell(r.width-20, 4.5, r.tr("Recommendation: "+c.Recommendation), "", "L", false)
		}
		r.pdf.Ln(1.5)
	}
}

func (r *pdfRenderer) metrics(v view) {
	if len(v.Metrics) == 0 && len(v.Keywords) == 0 {
		return
	}
	r.heading("SEO Metrics")

	r.pdf.SetFont("Helvetica", "", 10)
	for _, m := range v.Metrics {
		r.color(colorMuted)
		r.pdf.CellFormat(60, lineHeight, r.tr(m.Label), "", 0, "L", false, 0, "")
		r.color(rgb{17, 24, 39})
		r.pdf.CellFormat(0, lineHeight, r.tr(m.Value), "", 1, "L", false, 0, "")
	}

	if len(v.Keywords) == 0 {
		return
	}
	r.pdf.Ln(3)
	r.pdf.SetFont("Helvetica", "B", 10)
	r.pdf.SetFillColor(243, 244, 246)
	r.color(rgb{17, 24, 39})
	r.pdf.CellFormat(r.width-60, lineHeight+1, r.tr("Top Keyword"), "1", 0, "L", true, 0, "")
	r.pdf.CellFormat(25, lineHeight+1, r.tr("Position"), "1", 0, "C", true, 0, "")
	r.pdf.CellFormat(35, lineHeight+1, r.tr("Search Volume"), "1", 1, "R", true, 0, "")

	r.pdf.SetFont("Helvetica", "", 10)
	for _, k := range v.Keywords {
		r.pdf.CellFormat(r.width-60, lineHeight+1, r.tr(k.Keyword), "1", 0, "L", false, 0, "")
		r.pdf.CellFormat(25, lineHeight+1, k.Position, "1", 0, "C", false, 0, "")
		r.pdf.CellFormat(35, lineHeight+1, k.Volume, "1", 1, "R", false, 0, "")
	}
}

func (r *pdfRenderer) footer() {
	r.pdf.SetY(-12)
	r.pdf.SetFont("Helvetica", "I", 8)
	r.color(colorMuted)
	r.pdf.CellFormat(0, 5, fmt.Sprintf("GEO Optimizer - page %d/{nb}", r.pdf.PageNo()), "", 0, "C", false, 0, "")
}
