package export

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// PDF renders an executive summary: cover, category analysis, priority distribution, open issues
type PDF struct {
	// MaxOpenIssues caps the open issue table; zero means no cap.
	MaxOpenIssues int
}

func NewPDF() *PDF {
	return &PDF{MaxOpenIssues: 200}
}

type pdfDoc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (p *PDF) Write(_ context.Context, report *domain.ComplianceReport, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	doc := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	generated := report.GeneratedAt.Format("2006-01-02 15:04:05")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(0, 4, doc.tr(fmt.Sprintf("%s | %s | page %d", report.Source, generated, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	doc.cover(report)
	doc.categories(report.CategorySummaries)
	doc.priorities(report)
	doc.openIssues(report.OpenIssues, p.MaxOpenIssues)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func (d *pdfDoc) heading(text string) {
	d.pdf.SetFont("Arial", "B", 16)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.CellFormat(0, 10, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *pdfDoc) cover(report *domain.ComplianceReport) {
	pdf := d.pdf
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 26)
	pdf.SetTextColor(31, 78, 120)
	pdf.Ln(30)
	pdf.MultiCell(0, 12, d.tr(report.Title), "", "C", false)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 6, d.tr("Source: "+report.Source), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+report.GeneratedAt.Format("January 2, 2006 at 3:04 PM"), "", 1, "C", false, 0, "")
	pdf.Ln(25)

	open, safe := 0, 0
	for _, c := range report.CategorySummaries {
		open += c.OpenIssues
		safe += c.SafeCount
	}
	stats := []struct {
		label string
		value int
		r     int
		g     int
		b     int
	}{
		{"Findings", report.Stats.Total, 0, 0, 0},
		{"Open Issues", open, 220, 53, 69},
		{"Safe", safe, 40, 167, 69},
		{"No Rule", report.Stats.Unmatched, 108, 117, 125},
	}
	y := pdf.GetY()
	for i, s := range stats {
		x := 15 + float64(i)*45
		pdf.SetXY(x, y)
		pdf.SetFont("Arial", "B", 22)
		pdf.SetTextColor(s.r, s.g, s.b)
		pdf.CellFormat(45, 10, fmt.Sprintf("%d", s.value), "", 0, "C", false, 0, "")
		pdf.SetXY(x, y+11)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(45, 6, s.label, "", 0, "C", false, 0, "")
	}
}

func (d *pdfDoc) tableHeader(widths []float64, columns []string) {
	pdf := d.pdf
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(31, 78, 120)
	pdf.SetTextColor(255, 255, 255)
	for i, c := range columns {
		pdf.CellFormat(widths[i], 7, d.tr(c), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
}

// fit shortens text with an ellipsis until it fits the cell width
func (d *pdfDoc) fit(text string, width float64) string {
	text = d.tr(text)
	if d.pdf.GetStringWidth(text) <= width-2 {
		return text
	}
	r := []rune(text)
	for len(r) > 0 && d.pdf.GetStringWidth(string(r)+"...") > width-2 {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func (d *pdfDoc) categories(summaries []domain.CategorySummary) {
	d.pdf.AddPage()
	d.heading("Category Analysis")

	widths := []float64{75, 35, 35, 35}
	d.tableHeader(widths, []string{"Category", "Open Issues", "Safe", "Total"})
	for _, s := range summaries {
		d.pdf.CellFormat(widths[0], 7, d.fit(s.Category, widths[0]), "1", 0, "L", false, 0, "")
		d.pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", s.OpenIssues), "1", 0, "R", false, 0, "")
		d.pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", s.SafeCount), "1", 0, "R", false, 0, "")
		d.pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", s.Total), "1", 1, "R", false, 0, "")
	}
	d.pdf.Ln(8)
}

func (d *pdfDoc) priorities(report *domain.ComplianceReport) {
	pdf := d.pdf
	d.heading("Priority Distribution")

	maxCount := 0
	for _, p := range report.Priorities {
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}

	for _, p := range report.Priorities {
		r, g, b := p.Color.RGB()
		y := pdf.GetY()
		pdf.SetFillColor(r, g, b)
		pdf.SetDrawColor(160, 160, 160)
		pdf.Rect(15, y+1, 5, 5, "FD")

		pdf.SetX(22)
		pdf.CellFormat(50, 7, d.tr(string(p.Tier)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Count), "", 0, "R", false, 0, "")

		barWidth := 0.0
		if maxCount > 0 {
			barWidth = 80 * float64(p.Count) / float64(maxCount)
		}
		if barWidth > 0 {
			pdf.Rect(97, y+1.5, barWidth, 4, "FD")
		}
		pdf.Ln(7)
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetX(22)
	pdf.CellFormat(50, 7, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, fmt.Sprintf("%d", report.PriorityTotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
}

func (d *pdfDoc) openIssues(groups []domain.OpenIssueGroup, limit int) {
	pdf := d.pdf
	pdf.AddPage()
	d.heading("Open Issues")

	if len(groups) == 0 {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, "No open issues.", "", 1, "L", false, 0, "")
		return
	}

	widths := []float64{32, 28, 90, 15, 15}
	columns := []string{"Category", "Service", "Control", "Priority", "Count"}
	d.tableHeader(widths, columns)

	shown := groups
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, g := range shown {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			d.tableHeader(widths, columns)
		}
		r, gr, b := g.Color.RGB()
		pdf.CellFormat(widths[0], 6, d.fit(g.Category, widths[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, d.fit(g.Service, widths[1]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, d.fit(g.ControlTitle, widths[2]), "1", 0, "L", false, 0, "")
		pdf.SetFillColor(r, gr, b)
		pdf.CellFormat(widths[3], 6, d.fit(string(g.Priority), widths[3]), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%d", g.OpenIssues), "1", 1, "R", false, 0, "")
	}
	if len(shown) < len(groups) {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d more groups are listed in the workbook export.", len(groups)-len(shown)), "", 1, "L", false, 0, "")
	}
}
