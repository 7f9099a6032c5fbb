package history

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/compliance-atlas/pkg/models/store"
	"github.com/de-tools/compliance-atlas/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: s,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestStore_AddAndListRuns(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := &store.Run{ID: "run-1", Source: "scan.csv", Provider: "aws", CreatedAt: base, TotalRows: 3, Matched: 2, Unmatched: 1}
	second := &store.Run{ID: "run-2", Source: "scan.csv", Provider: "aws", CreatedAt: base.Add(time.Hour), TotalRows: 4, Matched: 4}
	other := &store.Run{ID: "run-3", Source: "gcp.csv", Provider: "gcp", CreatedAt: base.Add(2 * time.Hour)}

	require.NoError(t, f.store.AddRun(ctx, first, []store.CategorySummary{
		{Position: 0, Category: "Security and Identity", OpenIssues: 1, Total: 1},
		{Position: 1, Category: "Compute", OpenIssues: 1, SafeCount: 1, Total: 2},
	}))
	require.NoError(t, f.store.AddRun(ctx, second, nil))
	require.NoError(t, f.store.AddRun(ctx, other, nil))

	t.Run("newest first", func(t *testing.T) {
		runs, err := f.store.ListRuns(ctx, store.RunFilter{})
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, "run-3", runs[0].ID)
	})

	t.Run("by source with limit", func(t *testing.T) {
		runs, err := f.store.ListRuns(ctx, store.RunFilter{Source: "scan.csv", Limit: 1})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "run-2", runs[0].ID)
		assert.Equal(t, 4, runs[0].Matched)
	})

	t.Run("summaries in category order", func(t *testing.T) {
		summaries, err := f.store.GetSummaries(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "Security and Identity", summaries[0].Category)
		assert.Equal(t, "Compute", summaries[1].Category)
		assert.Equal(t, 1, summaries[1].SafeCount)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		assert.Error(t, f.store.AddRun(ctx, first, nil))
	})
}

func TestStore_AddRun_Statements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).
		WithArgs("run-1", "scan.csv", "aws", created, 3, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO category_summaries"))
	prep.ExpectExec().
		WithArgs("run-1", 0, "Compute", 2, 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = s.AddRun(context.Background(),
		&store.Run{ID: "run-1", Source: "scan.csv", Provider: "aws", CreatedAt: created, TotalRows: 3, Matched: 2, Unmatched: 1},
		[]store.CategorySummary{{RunID: "run-1", Category: "Compute", OpenIssues: 2, SafeCount: 1, Total: 3}},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AddRun_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err = s.AddRun(context.Background(), &store.Run{ID: "run-1"}, nil)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
