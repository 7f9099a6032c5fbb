package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/de-tools/compliance-atlas/pkg/runtime/terminal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := terminal.NewCLI(terminal.Options{
		Output: os.Stdout,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(terminal.ExitCode(err))
	}
}
