package api

import "time"

type Stats struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

type Finding struct {
	ControlTitle       string            `json:"control_title"`
	Status             string            `json:"status"`
	Service            string            `json:"service"`
	Severity           string            `json:"severity,omitempty"`
	Title              string            `json:"title,omitempty"`
	Region             string            `json:"region,omitempty"`
	AccountID          string            `json:"account_id,omitempty"`
	Resource           string            `json:"resource,omitempty"`
	Reason             string            `json:"reason,omitempty"`
	ControlDescription string            `json:"control_description,omitempty"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	Priority           string            `json:"priority"`
	Recommendation     string            `json:"recommendation"`
	Color              string            `json:"color"`
	Category           string            `json:"category,omitempty"`
	Matched            bool              `json:"matched"`
}

type CategorySummary struct {
	Category   string `json:"category"`
	OpenIssues int    `json:"open_issues"`
	SafeCount  int    `json:"safe_count"`
	Total      int    `json:"total"`
}

type TierCount struct {
	Priority string `json:"priority"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

type ServicePivotRow struct {
	Service string         `json:"service"`
	Counts  map[string]int `json:"counts"`
	Total   int            `json:"total"`
}

type OpenIssueGroup struct {
	Category           string `json:"category,omitempty"`
	Service            string `json:"service"`
	ControlTitle       string `json:"control_title"`
	ControlDescription string `json:"control_description,omitempty"`
	Priority           string `json:"priority"`
	OpenIssues         int    `json:"open_issues"`
}

type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

type ComplianceReport struct {
	Title         string            `json:"title"`
	Source        string            `json:"source"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Stats         Stats             `json:"stats"`
	Categories    []CategorySummary `json:"categories"`
	Priorities    []TierCount       `json:"priorities"`
	PriorityTotal int               `json:"priority_total"`
	Services      []ServicePivotRow `json:"services"`
	OpenIssues    []OpenIssueGroup  `json:"open_issues"`
	Severities    []SeverityCount   `json:"severities,omitempty"`
	Findings      []Finding         `json:"findings"`
}
