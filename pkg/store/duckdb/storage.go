package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const RunsTableSchema = `
	CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR NOT NULL PRIMARY KEY,
		source VARCHAR NOT NULL,
		provider VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		total_rows INTEGER NOT NULL,
		matched INTEGER NOT NULL,
		unmatched INTEGER NOT NULL
	);
`
const CategorySummariesTableSchema = `
	CREATE TABLE IF NOT EXISTS category_summaries (
		run_id VARCHAR NOT NULL,
		seq INTEGER NOT NULL,
		category VARCHAR NOT NULL,
		open_issues INTEGER NOT NULL,
		safe_count INTEGER NOT NULL,
		total INTEGER NOT NULL,
		PRIMARY KEY (run_id, category)
	);
`

var bootQueries = []string{
	RunsTableSchema,
	CategorySummariesTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
