package terminal

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/runtime/terminal/commands"
)

// Exit codes of the command line
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
)

// CLI represents the command-line interface
type CLI struct {
	globals *commands.Globals
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output    io.Writer
	LogOutput io.Writer
	Args      []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		globals: &commands.Globals{LogOutput: opts.LogOutput},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	if opts.Args != nil {
		cli.rootCmd.SetArgs(opts.Args)
	}
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an Execute error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitConfiguration
	}
	return ExitFailure
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "compliance-atlas",
		Short:         "Prioritize cloud compliance scan findings and build review reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cli.globals.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&cli.globals.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(commands.NewAnnotateCmd(cli.globals))
	cmd.AddCommand(commands.NewSummaryCmd(cli.globals))
	cmd.AddCommand(commands.NewCategoriesCmd(cli.globals))
	cmd.AddCommand(commands.NewHistoryCmd(cli.globals))

	return cmd
}
