package store

import "time"

type Run struct {
	ID        string
	Source    string
	Provider  string
	CreatedAt time.Time
	TotalRows int
	Matched   int
	Unmatched int
}

type CategorySummary struct {
	RunID      string
	Position   int
	Category   string
	OpenIssues int
	SafeCount  int
	Total      int
}

type RunFilter struct {
	Source string
	Limit  int
}
