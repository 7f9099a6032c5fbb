package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/services/history"
	"github.com/de-tools/compliance-atlas/pkg/store/duckdb"
	historystore "github.com/de-tools/compliance-atlas/pkg/store/duckdb/history"
)

type HistoryCmd struct {
	globals *Globals
	db      string
	source  string
	limit   int
}

func NewHistoryCmd(globals *Globals) *cobra.Command {
	hc := &HistoryCmd{globals: globals}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded annotation runs",
	}
	cmd.PersistentFlags().StringVar(&hc.db, "db", "", "DuckDB history file; defaults to history.db from the config")
	cmd.PersistentFlags().StringVar(&hc.source, "source", "", "Only runs of this input")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE:  hc.list,
	}
	list.Flags().IntVar(&hc.limit, "limit", 20, "Maximum number of runs")

	compare := &cobra.Command{
		Use:   "compare",
		Short: "Compare the two latest runs of a source per category",
		RunE:  hc.compare,
	}

	cmd.AddCommand(list, compare)
	return cmd
}

func (hc *HistoryCmd) service(cmd *cobra.Command) (*history.Service, func(), error) {
	path := hc.db
	if !cmd.Flags().Changed("db") {
		cfg, err := hc.globals.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		path = cfg.History.DB
	}
	if path == "" {
		return nil, nil, &domain.ConfigurationError{Op: "history", Err: fmt.Errorf("no history database: use --db or history.db")}
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: path})
	if err != nil {
		return nil, nil, &domain.IOError{Path: path, Err: err}
	}
	s, err := historystore.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return history.NewService(s), func() { _ = db.Close() }, nil
}

func (hc *HistoryCmd) list(cmd *cobra.Command, _ []string) error {
	ctx, err := hc.globals.Context(cmd.Context())
	if err != nil {
		return err
	}
	svc, closeDB, err := hc.service(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := svc.List(ctx, hc.source, hc.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-19s  %8s  %6s  %7s  %s\n", "ID", "CREATED", "FINDINGS", "OPEN", "NO RULE", "SOURCE")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-19s  %8d  %6d  %7d  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Stats.Total, r.OpenIssues(), r.Stats.Unmatched, r.Source)
	}
	return nil
}

func (hc *HistoryCmd) compare(cmd *cobra.Command, _ []string) error {
	if hc.source == "" {
		return &domain.ConfigurationError{Op: "history compare", Err: fmt.Errorf("--source is required")}
	}
	ctx, err := hc.globals.Context(cmd.Context())
	if err != nil {
		return err
	}
	svc, closeDB, err := hc.service(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	previous, current, deltas, err := svc.Compare(ctx, hc.source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s -> %s\n", hc.source,
		previous.CreatedAt.Format("2006-01-02 15:04:05"), current.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "%-28s  %6s  %6s  %6s  %6s  %6s\n", "CATEGORY", "OPEN", "WAS", "CHANGE", "SAFE", "WAS")
	for _, d := range deltas {
		fmt.Fprintf(out, "%-28s  %6d  %6d  %+6d  %6d  %6d\n",
			d.Category, d.OpenAfter, d.OpenBefore, d.OpenChange(), d.SafeAfter, d.SafeBefore)
	}
	return nil
}
