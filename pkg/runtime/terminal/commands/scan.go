package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/compliance-atlas/pkg/adapters"
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/services/config"
	"github.com/de-tools/compliance-atlas/pkg/services/workflow"
	"github.com/de-tools/compliance-atlas/pkg/store/rules"
)

// scanFlags are the input flags shared by annotate and summary
type scanFlags struct {
	input      string
	rules      string
	provider   string
	categories string
	critical   bool
	workers    int
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", "", "Scan results file or s3:// / gs:// URI (CSV or XLSX)")
	cmd.Flags().StringVar(&f.rules, "rules", "", "Priority lookup table (XLSX, CSV or YAML)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Scan layout and category preset (aws or gcp)")
	cmd.Flags().StringVar(&f.categories, "categories", "", "INI file overriding the category map")
	cmd.Flags().BoolVar(&f.critical, "critical", false, "Color critical severities")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Annotate with this many workers")

	_ = cmd.MarkFlagRequired("input")
}

// apply overrides config values with the flags set on the command line
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("rules") {
		cfg.Rules = f.rules
	}
	if flags.Changed("provider") {
		cfg.Provider = f.provider
	}
	if flags.Changed("categories") {
		cfg.Categories = f.categories
	}
	if flags.Changed("critical") {
		cfg.CriticalSeverity = f.critical
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if cfg.Rules == "" {
		cfg.Rules = rules.DefaultFile
	}
}

func (f *scanFlags) job(cmd *cobra.Command, cfg *config.Config) (workflow.Job, error) {
	f.apply(cmd, cfg)

	provider, err := domain.ParseProvider(cfg.Provider)
	if err != nil {
		return workflow.Job{}, &domain.ConfigurationError{Op: "provider", Err: err}
	}
	schema, ok := adapters.SchemaFor(provider.String())
	if !ok {
		return workflow.Job{}, &domain.ConfigurationError{Op: "provider", Err: fmt.Errorf("no input schema for %s", provider)}
	}
	ac, err := cfg.AnnotationConfig()
	if err != nil {
		return workflow.Job{}, err
	}

	return workflow.Job{
		Input:      f.input,
		Rules:      cfg.Rules,
		Provider:   provider,
		Schema:     schema,
		Annotation: ac,
	}, nil
}
