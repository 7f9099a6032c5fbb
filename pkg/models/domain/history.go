package domain

import "time"

// Run is one recorded annotation run
type Run struct {
	ID         string
	Source     string // scan_results.csv, s3://bucket/scans/latest.xlsx
	Provider   string // aws
	CreatedAt  time.Time
	Stats      AnnotationStats
	Categories []CategorySummary
}

// OpenIssues sums open issues across all category summaries
func (r Run) OpenIssues() int {
	n := 0
	for _, c := range r.Categories {
		n += c.OpenIssues
	}
	return n
}

// CategoryDelta compares one category between two runs
type CategoryDelta struct {
	Category    string
	OpenBefore  int
	OpenAfter   int
	SafeBefore  int
	SafeAfter   int
	TotalBefore int
	TotalAfter  int
}

// OpenChange is negative when open issues were fixed
func (d CategoryDelta) OpenChange() int {
	return d.OpenAfter - d.OpenBefore
}

// CompareRuns returns per-category deltas from previous to current.
// Categories appear in current's order followed by categories only previous had.
func CompareRuns(previous, current Run) []CategoryDelta {
	before := make(map[string]CategorySummary, len(previous.Categories))
	for _, c := range previous.Categories {
		before[c.Category] = c
	}

	deltas := make([]CategoryDelta, 0, len(current.Categories))
	seen := make(map[string]struct{}, len(current.Categories))
	for _, c := range current.Categories {
		seen[c.Category] = struct{}{}
		b := before[c.Category]
		deltas = append(deltas, CategoryDelta{
			Category:    c.Category,
			OpenBefore:  b.OpenIssues,
			OpenAfter:   c.OpenIssues,
			SafeBefore:  b.SafeCount,
			SafeAfter:   c.SafeCount,
			TotalBefore: b.Total,
			TotalAfter:  c.Total,
		})
	}
	for _, b := range previous.Categories {
		if _, ok := seen[b.Category]; ok {
			continue
		}
		deltas = append(deltas, CategoryDelta{
			Category:    b.Category,
			OpenBefore:  b.OpenIssues,
			SafeBefore:  b.SafeCount,
			TotalBefore: b.Total,
		})
	}
	return deltas
}
