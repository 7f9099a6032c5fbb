package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/compliance-atlas/pkg/adapters"
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/runtime/export"
	"github.com/de-tools/compliance-atlas/pkg/services/annotation"
	"github.com/de-tools/compliance-atlas/pkg/services/report"
	"github.com/de-tools/compliance-atlas/pkg/store/rules"
	"github.com/de-tools/compliance-atlas/pkg/store/source"
	"github.com/de-tools/compliance-atlas/pkg/store/table"
)

// Job is one annotation run: where to read from and where the report goes
type Job struct {
	Input      string // scan_results.csv, s3://bucket/scan.xlsx
	Rules      string // PowerPipeControls_Annotations.xlsx
	Provider   domain.Provider
	Schema     adapters.Schema
	Annotation annotation.Config
	Title      string
	Sinks      []export.Sink
	// Record stores the run in the history when the runner has one.
	Record bool
}

// Recorder stores run summaries
type Recorder interface {
	Record(ctx context.Context, run domain.Run) (*domain.Run, error)
}

// Result is what a finished job produced
type Result struct {
	Report *domain.ComplianceReport
	// Run is nil when the job was not recorded.
	Run *domain.Run
}

type Runner struct {
	opener   source.Opener
	recorder Recorder
}

// NewRunner builds a runner; recorder may be nil when history is disabled
func NewRunner(opener source.Opener, recorder Recorder) *Runner {
	return &Runner{opener: opener, recorder: recorder}
}

// Run validates every input before annotating, so no sink runs after a fatal check fails
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("input", job.Input).Logger()
	ctx = logger.WithContext(ctx)

	findings, err := r.loadFindings(ctx, job)
	if err != nil {
		return nil, err
	}
	ruleTable, err := r.loadRules(ctx, job.Rules)
	if err != nil {
		return nil, err
	}
	engine, err := annotation.NewEngine(ruleTable, job.Annotation)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("findings", len(findings)).Int("rules", ruleTable.Len()).Msg("inputs loaded")

	annotated, stats, err := engine.Annotate(ctx, findings)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate findings: %w", err)
	}

	rep := report.Build(engine, annotated, stats, report.Settings{Title: job.Title, Source: job.Input})
	for _, sink := range job.Sinks {
		if err := sink.Handle(ctx, rep); err != nil {
			return nil, err
		}
	}

	result := &Result{Report: rep}
	if job.Record && r.recorder != nil {
		run, err := r.recorder.Record(ctx, domain.Run{
			Source:     job.Input,
			Provider:   job.Provider.String(),
			Stats:      stats,
			Categories: rep.CategorySummaries,
		})
		if err != nil {
			// reports are already written
			logger.Warn().Err(err).Msg("failed to record run history")
		} else {
			result.Run = run
		}
	}

	logger.Info().
		Int("matched", stats.Matched).
		Int("unmatched", stats.Unmatched).
		Int("open", len(rep.NonCompliant)).
		Msg("annotation finished")
	return result, nil
}

func (r *Runner) loadFindings(ctx context.Context, job Job) ([]domain.Finding, error) {
	t, err := r.readTable(ctx, job.Input)
	if err != nil {
		return nil, err
	}
	return adapters.MapTableToFindings(t, job.Schema)
}

func (r *Runner) loadRules(ctx context.Context, uri string) (domain.RuleTable, error) {
	if uri == "" {
		return domain.RuleTable{}, &domain.ConfigurationError{Op: "priority table", Err: fmt.Errorf("no lookup table given")}
	}
	rc, err := r.opener.Open(ctx, uri)
	if err != nil {
		return domain.RuleTable{}, err
	}
	defer rc.Close()
	return rules.Load(ctx, source.Name(uri), rc)
}

func (r *Runner) readTable(ctx context.Context, uri string) (*table.Table, error) {
	if !table.Supported(source.Name(uri)) {
		// fail before any download
		_, err := table.Read(ctx, source.Name(uri), nil)
		return nil, err
	}
	rc, err := r.opener.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return table.Read(ctx, source.Name(uri), rc)
}
