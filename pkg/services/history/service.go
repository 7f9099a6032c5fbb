package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/compliance-atlas/pkg/adapters"
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/models/store"
	historystore "github.com/de-tools/compliance-atlas/pkg/store/duckdb/history"
)

// ErrNotEnoughRuns is returned by Compare when a source has fewer than two runs
var ErrNotEnoughRuns = errors.New("at least two runs are needed to compare")

// Service records and compares annotation runs
type Service struct {
	store historystore.Store
	now   func() time.Time
}

func NewService(s historystore.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Record stores the run under a fresh id and returns it
func (s *Service) Record(ctx context.Context, run domain.Run) (*domain.Run, error) {
	run.ID = uuid.NewString()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	r, summaries := adapters.MapDomainRunToStore(&run)
	if err := s.store.AddRun(ctx, r, summaries); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("run_id", run.ID).Str("source", run.Source).Msg("run recorded")
	return &run, nil
}

// List returns the most recent runs, optionally of one source
func (s *Service) List(ctx context.Context, source string, limit int) ([]domain.Run, error) {
	runs, err := s.store.ListRuns(ctx, store.RunFilter{Source: source, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	out := make([]domain.Run, 0, len(runs))
	for _, r := range runs {
		summaries, err := s.store.GetSummaries(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", r.ID, err)
		}
		out = append(out, *adapters.MapStoreRunToDomain(r, summaries))
	}
	return out, nil
}

// Compare returns the per-category change between the two latest runs of a source
func (s *Service) Compare(ctx context.Context, source string) (previous, current domain.Run, deltas []domain.CategoryDelta, err error) {
	runs, err := s.List(ctx, source, 2)
	if err != nil {
		return domain.Run{}, domain.Run{}, nil, err
	}
	if len(runs) < 2 {
		return domain.Run{}, domain.Run{}, nil, ErrNotEnoughRuns
	}
	current, previous = runs[0], runs[1]
	return previous, current, domain.CompareRuns(previous, current), nil
}
