package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// Columns appended to every annotated row
var annotatedColumns = []string{"Priority", "Recommendation Steps/Approach", "Color", "Category"}

var findingColumns = []string{
	"control_title", "status", "title", "service", "severity", "region", "account_id",
	"resource", "reason", "control_description",
}

// CSV writes the raw view with the annotation columns appended
type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func (c *CSV) Write(_ context.Context, report *domain.ComplianceReport, w io.Writer) error {
	cw := csv.NewWriter(w)

	extra := attributeColumns(report.Findings)
	header := append(append(append([]string{}, findingColumns...), extra...), annotatedColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, f := range report.Findings {
		if err := cw.Write(findingRow(f, extra)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func findingRow(f domain.AnnotatedFinding, extra []string) []string {
	row := []string{
		f.ControlTitle, string(f.Status), f.Title, f.ServiceTitle, f.Severity, f.Region, f.AccountID,
		f.Resource, f.Reason, f.ControlDescription,
	}
	for _, col := range extra {
		row = append(row, f.Attribute(col))
	}
	return append(row, string(f.Priority), f.Recommendation, string(f.Color), f.Category)
}

// attributeColumns lists passthrough columns present in any finding, sorted
func attributeColumns(findings []domain.AnnotatedFinding) []string {
	seen := make(map[string]struct{})
	for _, f := range findings {
		for k := range f.Attributes {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
