package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/compliance-atlas/pkg/models/store"
	"github.com/de-tools/compliance-atlas/pkg/store/duckdb"
)

// Store persists annotation runs and their category summaries
type Store interface {
	AddRun(ctx context.Context, run *store.Run, summaries []store.CategorySummary) error
	ListRuns(ctx context.Context, filter store.RunFilter) ([]*store.Run, error)
	GetSummaries(ctx context.Context, runID string) ([]store.CategorySummary, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) AddRun(ctx context.Context, run *store.Run, summaries []store.CategorySummary) error {
	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, provider, created_at, total_rows, matched, unmatched)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Source, run.Provider, run.CreatedAt, run.TotalRows, run.Matched, run.Unmatched,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if len(summaries) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO category_summaries (run_id, seq, category, open_issues, safe_count, total)
		VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, c := range summaries {
			if _, err := stmt.ExecContext(ctx, run.ID, c.Position, c.Category, c.OpenIssues, c.SafeCount, c.Total); err != nil {
				return fmt.Errorf("insert category summary: %w", err)
			}
		}
		return nil
	})
}

func (s *defaultStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]*store.Run, error) {
	query := `SELECT id, source, provider, created_at, total_rows, matched, unmatched FROM runs`
	var args []interface{}
	if filter.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*store.Run, 0)
	for rows.Next() {
		var (
			r        store.Run
			provider sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Source, &provider, &r.CreatedAt, &r.TotalRows, &r.Matched, &r.Unmatched); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Provider = provider.String
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

func (s *defaultStore) GetSummaries(ctx context.Context, runID string) ([]store.CategorySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, category, open_issues, safe_count, total
		FROM category_summaries
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query category summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]store.CategorySummary, 0)
	for rows.Next() {
		var c store.CategorySummary
		if err := rows.Scan(&c.RunID, &c.Position, &c.Category, &c.OpenIssues, &c.SafeCount, &c.Total); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		summaries = append(summaries, c)
	}
	return summaries, rows.Err()
}
