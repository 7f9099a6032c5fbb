package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/runtime/export"
	"github.com/de-tools/compliance-atlas/pkg/services/history"
	"github.com/de-tools/compliance-atlas/pkg/services/workflow"
	"github.com/de-tools/compliance-atlas/pkg/store/duckdb"
	historystore "github.com/de-tools/compliance-atlas/pkg/store/duckdb/history"
	"github.com/de-tools/compliance-atlas/pkg/store/source"
)

type AnnotateCmd struct {
	globals *Globals
	scan    scanFlags
	output  string
	formats []string
	history string
	title   string
}

func NewAnnotateCmd(globals *Globals) *cobra.Command {
	ac := &AnnotateCmd{globals: globals}
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate scan results with priorities and recommendations and export the report",
		RunE:  ac.run,
	}

	ac.scan.register(cmd)
	cmd.Flags().StringVar(&ac.output, "output", "", "Report path; defaults to <input>_compliance_report_<timestamp>.<format>")
	cmd.Flags().StringSliceVar(&ac.formats, "format", nil, "Report formats: xlsx, pdf, json, csv")
	cmd.Flags().StringVar(&ac.history, "history", "", "DuckDB file recording run summaries")
	cmd.Flags().StringVar(&ac.title, "title", "", "Report title")

	return cmd
}

func (ac *AnnotateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, err := ac.globals.Context(cmd.Context())
	if err != nil {
		return err
	}
	cfg, err := ac.globals.LoadConfig()
	if err != nil {
		return err
	}
	job, err := ac.scan.job(cmd, cfg)
	if err != nil {
		return err
	}
	job.Title = ac.title

	switch {
	case cmd.Flags().Changed("format"):
		cfg.Formats = ac.formats
	case ac.output != "":
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(ac.output)), "."); ext != "" {
			cfg.Formats = []string{ext}
		}
	}
	formats, err := export.ParseFormats(cfg.Formats)
	if err != nil {
		return err
	}

	now := ac.globals.now()
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := export.DefaultPath(job.Input, format, now)
		if ac.output != "" {
			path = ac.output
			if len(formats) > 1 {
				path = export.WithExt(ac.output, format)
			}
		}
		sink, err := export.NewFileSink(format, path)
		if err != nil {
			return err
		}
		job.Sinks = append(job.Sinks, sink)
		paths = append(paths, path)
	}
	job.Sinks = append(job.Sinks, export.NewConsole(cmd.OutOrStdout()))

	if cmd.Flags().Changed("history") {
		cfg.History.DB = ac.history
	}
	var recorder workflow.Recorder
	if cfg.History.DB != "" {
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.History.DB})
		if err != nil {
			return &domain.IOError{Path: cfg.History.DB, Err: err}
		}
		defer db.Close()

		s, err := historystore.NewStore(db)
		if err != nil {
			return err
		}
		recorder = history.NewService(s)
		job.Record = true
	}

	opener := source.NewOpener(source.Settings{AWSProfile: cfg.AWS.Profile, AWSRegion: cfg.AWS.Region})
	result, err := workflow.NewRunner(opener, recorder).Run(ctx, job)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintf(out, "Report saved: %s\n", p)
	}
	if result.Run != nil {
		fmt.Fprintf(out, "Run recorded: %s\n", result.Run.ID)
	}
	return nil
}
