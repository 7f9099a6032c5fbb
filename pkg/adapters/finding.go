package adapters

import (
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/store/table"
)

// Scan export columns
const (
	ColumnControlTitle       = "control_title"
	ColumnControlDescription = "control_description"
	ColumnStatus             = "status"
	ColumnTitle              = "title"
	ColumnService            = "service"
	ColumnSeverity           = "severity"
	ColumnRegion             = "region"
	ColumnAccountID          = "account_id"
	ColumnResource           = "resource"
	ColumnReason             = "reason"
	ColumnProject            = "project"
	ColumnLocation           = "location"
)

// Schema describes how a scan export maps onto findings
type Schema struct {
	Name string
	// ServiceColumn holds the service title used for categorization.
	ServiceColumn string
	Required      []string
}

// AWSSchema reads exports where the title column carries the service name
var AWSSchema = Schema{
	Name:          "aws",
	ServiceColumn: ColumnTitle,
	Required:      []string{ColumnControlTitle, ColumnStatus, ColumnTitle},
}

// GCPSchema reads exports with a dedicated service column
var GCPSchema = Schema{
	Name:          "gcp",
	ServiceColumn: ColumnService,
	Required: []string{
		ColumnService, ColumnTitle, ColumnStatus, ColumnControlTitle, ColumnControlDescription,
		ColumnReason, ColumnResource, ColumnProject, ColumnLocation,
	},
}

var typedColumns = map[string]struct{}{
	ColumnControlTitle:       {},
	ColumnControlDescription: {},
	ColumnStatus:             {},
	ColumnTitle:              {},
	ColumnSeverity:           {},
	ColumnRegion:             {},
	ColumnAccountID:          {},
	ColumnResource:           {},
	ColumnReason:             {},
}

// SchemaFor returns the preset for a provider name
func SchemaFor(provider string) (Schema, bool) {
	switch provider {
	case "aws", "":
		return AWSSchema, true
	case "gcp":
		return GCPSchema, true
	}
	return Schema{}, false
}

// MapTableToFindings validates the required columns and converts every row.
// Columns without a typed field are kept in Finding.Attributes.
func MapTableToFindings(t *table.Table, schema Schema) ([]domain.Finding, error) {
	if err := t.Require(schema.Required...); err != nil {
		return nil, &domain.ConfigurationError{Op: "scan results", Err: err}
	}

	var extra []string
	for _, c := range t.Columns {
		if _, ok := typedColumns[c]; ok || c == schema.ServiceColumn || c == "" {
			continue
		}
		extra = append(extra, c)
	}

	findings := make([]domain.Finding, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		f := domain.Finding{
			ControlTitle:       t.Value(i, ColumnControlTitle),
			Status:             domain.Status(t.Value(i, ColumnStatus)),
			ServiceTitle:       t.Value(i, schema.ServiceColumn),
			Severity:           t.Value(i, ColumnSeverity),
			Title:              t.Value(i, ColumnTitle),
			Region:             t.Value(i, ColumnRegion),
			AccountID:          t.Value(i, ColumnAccountID),
			Resource:           t.Value(i, ColumnResource),
			Reason:             t.Value(i, ColumnReason),
			ControlDescription: t.Value(i, ColumnControlDescription),
		}
		if len(extra) > 0 {
			f.Attributes = make(map[string]string, len(extra))
			for _, c := range extra {
				f.Attributes[c] = t.Value(i, c)
			}
		}
		findings = append(findings, f)
	}
	return findings, nil
}
