package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// Fixed sheet names of the workbook
const (
	SheetRaw              = "Raw Data"
	SheetCompliant        = "No Open Issues"
	SheetNonCompliant     = "Open Issues"
	SheetSummaryTables    = "Summary Tables"
	SheetCategoryAnalysis = "Category Analysis"
	SheetPriority         = "Priority Summary"
	SheetServicePivot     = "Service Pivot"
)

// MaxSheetName is the longest sheet name a workbook accepts
const MaxSheetName = 31

// Columns added to category sheets for manual review
var reviewerColumns = []string{"Feedback", "Checkbox", "Review Date", "Action Items"}

// Workbook renders the report as an XLSX workbook
type Workbook struct{}

func NewWorkbook() *Workbook {
	return &Workbook{}
}

type workbook struct {
	f      *excelize.File
	styles map[string]int
	header int
	names  map[string]struct{}
}

func (wb *Workbook) Write(_ context.Context, report *domain.ComplianceReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	b := &workbook{f: f, styles: make(map[string]int), names: make(map[string]struct{})}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	b.header = header

	extra := attributeColumns(report.Findings)
	steps := []func() error{
		func() error { return b.findingSheet(SheetRaw, report.Findings, extra, false) },
		func() error { return b.findingSheet(SheetCompliant, report.Compliant, extra, false) },
		func() error { return b.findingSheet(SheetNonCompliant, report.NonCompliant, extra, false) },
	}
	for _, s := range report.Sections {
		steps = append(steps, func() error { return b.findingSheet(s.Category, s.Findings, extra, true) })
	}
	steps = append(steps,
		func() error { return b.summaryTables(report) },
		func() error { return b.categoryAnalysis(report.CategorySummaries) },
		func() error { return b.prioritySummary(report) },
		func() error { return b.servicePivot(report.ServicePivot) },
	)
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SheetName makes a valid, unique-able sheet name out of a category name
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > MaxSheetName {
		name = string(r[:MaxSheetName])
	}
	if name == "" {
		name = "Sheet"
	}
	return name
}

func (b *workbook) addSheet(name string) (string, error) {
	name = SheetName(name)
	base := name
	for i := 2; ; i++ {
		if _, taken := b.names[strings.ToLower(name)]; !taken {
			break
		}
		suffix := fmt.Sprintf(" (%d)", i)
		r := []rune(base)
		if len(r)+len(suffix) > MaxSheetName {
			r = r[:MaxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	b.names[strings.ToLower(name)] = struct{}{}

	if len(b.names) == 1 {
		if err := b.f.SetSheetName(b.f.GetSheetName(0), name); err != nil {
			return "", fmt.Errorf("failed to name sheet %s: %w", name, err)
		}
		return name, nil
	}
	if _, err := b.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	return name, nil
}

func (b *workbook) fill(c domain.Color) (int, error) {
	key := c.Hex()
	if id, ok := b.styles[key]; ok {
		return id, nil
	}
	id, err := b.f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: c.TextHex()},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{key}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "D9D9D9", Style: 1}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create fill style: %w", err)
	}
	b.styles[key] = id
	return id, nil
}

func (b *workbook) row(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return b.f.SetSheetRow(sheet, cell, &values)
}

func (b *workbook) headerRow(sheet string, row int, columns []string) error {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := b.row(sheet, row, values); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(columns), row)
	return b.f.SetCellStyle(sheet, first, last, b.header)
}

func (b *workbook) colorCell(sheet string, col, row int, c domain.Color) error {
	style, err := b.fill(c)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return b.f.SetCellStyle(sheet, cell, cell, style)
}

func (b *workbook) findingSheet(name string, findings []domain.AnnotatedFinding, extra []string, review bool) error {
	sheet, err := b.addSheet(name)
	if err != nil {
		return err
	}

	columns := append(append(append([]string{}, findingColumns...), extra...), annotatedColumns...)
	priorityCol := len(findingColumns) + len(extra) + 1
	if review {
		columns = append(columns, reviewerColumns...)
	}
	if err := b.headerRow(sheet, 1, columns); err != nil {
		return err
	}

	for i, f := range findings {
		r := findingRow(f, extra)
		values := make([]interface{}, 0, len(columns))
		for _, v := range r {
			values = append(values, v)
		}
		if err := b.row(sheet, i+2, values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
		if err := b.colorCell(sheet, priorityCol, i+2, f.Color); err != nil {
			return err
		}
		if f.SeverityColor != "" {
			if err := b.colorCell(sheet, 5, i+2, f.SeverityColor); err != nil {
				return err
			}
		}
	}

	if review && len(findings) > 0 {
		checkCol := len(columns) - len(reviewerColumns) + 2
		first, _ := excelize.CoordinatesToCellName(checkCol, 2)
		last, _ := excelize.CoordinatesToCellName(checkCol, len(findings)+1)
		dv := excelize.NewDataValidation(true)
		dv.Sqref = first + ":" + last
		if err := dv.SetDropList([]string{"Yes", "No"}); err != nil {
			return fmt.Errorf("failed to build review checkbox: %w", err)
		}
		if err := b.f.AddDataValidation(sheet, dv); err != nil {
			return fmt.Errorf("failed to add review checkbox: %w", err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := b.f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return err
	}
	return nil
}

func (b *workbook) summaryTables(report *domain.ComplianceReport) error {
	sheet, err := b.addSheet(SheetSummaryTables)
	if err != nil {
		return err
	}

	columns := []string{"Category", "Service", "Control Title", "Control Description", "Priority", "Open Issues"}
	if err := b.headerRow(sheet, 1, columns); err != nil {
		return err
	}
	row := 2
	for _, g := range report.OpenIssues {
		if err := b.row(sheet, row, []interface{}{g.Category, g.Service, g.ControlTitle, g.ControlDescription, string(g.Priority), g.OpenIssues}); err != nil {
			return err
		}
		if err := b.colorCell(sheet, 5, row, g.Color); err != nil {
			return err
		}
		row++
	}

	for _, p := range []struct {
		title string
		pivot domain.StatusPivot
	}{
		{"Compliant controls by status", report.CompliantPivot},
		{"Open controls by status", report.NonCompliantPivot},
	} {
		row += 2
		if err := b.row(sheet, row, []interface{}{p.title}); err != nil {
			return err
		}
		row++
		header := []string{"Control Title"}
		for _, s := range p.pivot.Statuses {
			header = append(header, string(s))
		}
		if err := b.headerRow(sheet, row, header); err != nil {
			return err
		}
		row++
		for _, r := range p.pivot.Rows {
			values := []interface{}{r.ControlTitle}
			for _, s := range p.pivot.Statuses {
				values = append(values, r.Counts[s])
			}
			if err := b.row(sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	return b.f.SetColWidth(sheet, "A", "F", 28)
}

func (b *workbook) categoryAnalysis(summaries []domain.CategorySummary) error {
	sheet, err := b.addSheet(SheetCategoryAnalysis)
	if err != nil {
		return err
	}
	if err := b.headerRow(sheet, 1, []string{"Category", "Open Issues", string(domain.TierSafe), "Total"}); err != nil {
		return err
	}
	for i, s := range summaries {
		if err := b.row(sheet, i+2, []interface{}{s.Category, s.OpenIssues, s.SafeCount, s.Total}); err != nil {
			return err
		}
	}
	return b.f.SetColWidth(sheet, "A", "D", 24)
}

func (b *workbook) prioritySummary(report *domain.ComplianceReport) error {
	sheet, err := b.addSheet(SheetPriority)
	if err != nil {
		return err
	}
	if err := b.headerRow(sheet, 1, []string{"Priority", "Count"}); err != nil {
		return err
	}
	for i, p := range report.Priorities {
		if err := b.row(sheet, i+2, []interface{}{string(p.Tier), p.Count}); err != nil {
			return err
		}
		if err := b.colorCell(sheet, 1, i+2, p.Color); err != nil {
			return err
		}
	}
	totalRow := len(report.Priorities) + 2
	if err := b.row(sheet, totalRow, []interface{}{"Total", report.PriorityTotal}); err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return err
	}

	if len(report.Priorities) == 0 {
		return nil
	}
	last := len(report.Priorities) + 1
	ref := quoteSheet(sheet)
	return b.f.AddChart(sheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", ref),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", ref, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Priority Distribution"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func (b *workbook) servicePivot(rows []domain.ServicePivotRow) error {
	sheet, err := b.addSheet(SheetServicePivot)
	if err != nil {
		return err
	}

	present := make(map[domain.Tier]bool)
	for _, r := range rows {
		for t, n := range r.Counts {
			if n > 0 {
				present[t] = true
			}
		}
	}
	var tiers []domain.Tier
	for _, t := range domain.TierOrder {
		if present[t] {
			tiers = append(tiers, t)
		}
	}

	header := []string{"Service"}
	for _, t := range tiers {
		header = append(header, string(t))
	}
	header = append(header, "Total")
	if err := b.headerRow(sheet, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{r.Service}
		for _, t := range tiers {
			values = append(values, r.Counts[t])
		}
		values = append(values, r.Total)
		if err := b.row(sheet, i+2, values); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := b.f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return err
	}

	if len(rows) == 0 || len(tiers) == 0 {
		return nil
	}
	ref := quoteSheet(sheet)
	last := len(rows) + 1
	series := make([]excelize.ChartSeries, 0, len(tiers))
	for i := range tiers {
		col, _ := excelize.ColumnNumberToName(i + 2)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", ref, col),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", ref, col, col, last),
		})
	}
	anchor, _ := excelize.CoordinatesToCellName(len(header)+2, 2)
	return b.f.AddChart(sheet, anchor, &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Findings per Service"}},
	})
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
