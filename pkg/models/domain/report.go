package domain

import "time"

// ComplianceReport is everything a report sink needs to render one annotated scan
type ComplianceReport struct {
	Title       string
	Source      string
	GeneratedAt time.Time
	Stats       AnnotationStats

	// Findings is the raw view: every row in input order.
	Findings     []AnnotatedFinding
	Compliant    []AnnotatedFinding
	NonCompliant []AnnotatedFinding
	// Sections holds the category-scoped views, in category map order, non-empty only.
	Sections []CategorySection

	CategorySummaries []CategorySummary
	Priorities        []TierCount
	PriorityTotal     int
	ServicePivot      []ServicePivotRow
	OpenIssues        []OpenIssueGroup
	CompliantPivot    StatusPivot
	NonCompliantPivot StatusPivot
	Severities        []SeverityCount
}

// AnnotationStats counts how rows fared during the lookup join
type AnnotationStats struct {
	Total     int
	Matched   int
	Unmatched int
}

// CategorySection is the category-scoped view of findings
type CategorySection struct {
	Category string
	Findings []AnnotatedFinding
}

// CategorySummary is one row of the per-category analysis
type CategorySummary struct {
	Category   string
	OpenIssues int
	SafeCount  int
	Total      int
}

// TierCount is the number of findings resolved to a tier
type TierCount struct {
	Tier  Tier
	Color Color
	Count int
}

// ServicePivotRow counts findings of one service per resolved tier
type ServicePivotRow struct {
	Service string
	Counts  map[Tier]int
	Total   int
}

// OpenIssueGroup aggregates non-compliant findings of one control
type OpenIssueGroup struct {
	Category           string
	Service            string
	ControlTitle       string
	ControlDescription string
	Priority           Tier
	Color              Color
	OpenIssues         int
}

// StatusPivot counts findings per control title and status
type StatusPivot struct {
	Statuses []Status
	Rows     []StatusPivotRow
}

// StatusPivotRow is one control title of a StatusPivot
type StatusPivotRow struct {
	ControlTitle string
	Counts       map[Status]int
}

// SeverityCount is the number of open issues carrying a raw severity value
type SeverityCount struct {
	Severity string
	Color    Color
	Count    int
}
