package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/compliance-atlas/pkg/runtime/export"
	"github.com/de-tools/compliance-atlas/pkg/services/workflow"
	"github.com/de-tools/compliance-atlas/pkg/store/source"
)

type SummaryCmd struct {
	globals *Globals
	scan    scanFlags
}

func NewSummaryCmd(globals *Globals) *cobra.Command {
	sc := &SummaryCmd{globals: globals}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the category and priority summary without writing a report",
		RunE:  sc.run,
	}

	sc.scan.register(cmd)
	return cmd
}

func (sc *SummaryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, err := sc.globals.Context(cmd.Context())
	if err != nil {
		return err
	}
	cfg, err := sc.globals.LoadConfig()
	if err != nil {
		return err
	}
	job, err := sc.scan.job(cmd, cfg)
	if err != nil {
		return err
	}
	job.Sinks = []export.Sink{export.NewConsole(cmd.OutOrStdout())}

	opener := source.NewOpener(source.Settings{AWSProfile: cfg.AWS.Profile, AWSRegion: cfg.AWS.Region})
	_, err = workflow.NewRunner(opener, nil).Run(ctx, job)
	return err
}
