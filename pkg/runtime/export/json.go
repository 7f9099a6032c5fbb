package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/de-tools/compliance-atlas/pkg/adapters"
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// JSON writes the report as an indented JSON document
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (j *JSON) Write(_ context.Context, report *domain.ComplianceReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(adapters.MapComplianceReportDomainToApi(report)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
