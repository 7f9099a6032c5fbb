package rules

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/store/table"
)

// Lookup table columns
const (
	ColumnControlTitle   = "control_title"
	ColumnPriority       = "priority"
	ColumnRecommendation = "Recommendation Steps/Approach"
)

// DefaultFile is the lookup table shipped alongside scan exports
const DefaultFile = "PowerPipeControls_Annotations.xlsx"

type yamlRule struct {
	ControlTitle   string `yaml:"control_title"`
	Priority       string `yaml:"priority"`
	Recommendation string `yaml:"recommendation"`
}

// Load reads a lookup table from a spreadsheet, CSV or YAML payload
func Load(ctx context.Context, name string, r io.Reader) (domain.RuleTable, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return LoadYAML(ctx, r)
	}

	t, err := table.Read(ctx, name, r)
	if err != nil {
		return domain.RuleTable{}, err
	}
	return FromTable(ctx, t)
}

// FromTable converts lookup table rows into rules.
// Rows with an empty title or an unknown priority are skipped and logged.
func FromTable(ctx context.Context, t *table.Table) (domain.RuleTable, error) {
	if err := t.Require(ColumnControlTitle, ColumnPriority, ColumnRecommendation); err != nil {
		return domain.RuleTable{}, &domain.ConfigurationError{Op: "priority table", Err: err}
	}

	raw := make([]yamlRule, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		raw = append(raw, yamlRule{
			ControlTitle:   t.Value(i, ColumnControlTitle),
			Priority:       t.Value(i, ColumnPriority),
			Recommendation: t.Value(i, ColumnRecommendation),
		})
	}
	return build(ctx, raw), nil
}

// LoadYAML reads a list of {control_title, priority, recommendation} entries
func LoadYAML(ctx context.Context, r io.Reader) (domain.RuleTable, error) {
	var raw []yamlRule
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return domain.RuleTable{}, &domain.ConfigurationError{Op: "priority table", Err: fmt.Errorf("parse yaml: %w", err)}
	}
	return build(ctx, raw), nil
}

func build(ctx context.Context, raw []yamlRule) domain.RuleTable {
	logger := zerolog.Ctx(ctx)
	rules := make([]domain.PriorityRule, 0, len(raw))

	for i, r := range raw {
		if r.ControlTitle == "" {
			logger.Warn().Int("row", i+2).Msg("skipping priority rule without control_title")
			continue
		}
		tier, err := domain.ParseRuleTier(r.Priority)
		if err != nil {
			logger.Warn().Err(err).Int("row", i+2).Str("control_title", r.ControlTitle).Msg("skipping priority rule")
			continue
		}
		rules = append(rules, domain.PriorityRule{
			ControlTitle:   r.ControlTitle,
			Priority:       tier,
			Recommendation: r.Recommendation,
		})
	}

	rt := domain.NewRuleTable(rules)
	logger.Debug().Int("rules", rt.Len()).Msg("priority table loaded")
	return rt
}
