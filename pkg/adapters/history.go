package adapters

import (
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/models/store"
)

func MapStoreRunToDomain(r *store.Run, summaries []store.CategorySummary) *domain.Run {
	if r == nil {
		return nil
	}

	categories := make([]domain.CategorySummary, 0, len(summaries))
	for _, s := range summaries {
		categories = append(categories, domain.CategorySummary{
			Category:   s.Category,
			OpenIssues: s.OpenIssues,
			SafeCount:  s.SafeCount,
			Total:      s.Total,
		})
	}

	return &domain.Run{
		ID:        r.ID,
		Source:    r.Source,
		Provider:  r.Provider,
		CreatedAt: r.CreatedAt,
		Stats: domain.AnnotationStats{
			Total:     r.TotalRows,
			Matched:   r.Matched,
			Unmatched: r.Unmatched,
		},
		Categories: categories,
	}
}

func MapDomainRunToStore(dr *domain.Run) (*store.Run, []store.CategorySummary) {
	summaries := make([]store.CategorySummary, 0, len(dr.Categories))
	for i, c := range dr.Categories {
		summaries = append(summaries, store.CategorySummary{
			RunID:      dr.ID,
			Position:   i,
			Category:   c.Category,
			OpenIssues: c.OpenIssues,
			SafeCount:  c.SafeCount,
			Total:      c.Total,
		})
	}

	return &store.Run{
		ID:        dr.ID,
		Source:    dr.Source,
		Provider:  dr.Provider,
		CreatedAt: dr.CreatedAt,
		TotalRows: dr.Stats.Total,
		Matched:   dr.Stats.Matched,
		Unmatched: dr.Stats.Unmatched,
	}, summaries
}
