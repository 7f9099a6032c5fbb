package domain

import "strings"

// Status is the evaluation outcome reported by the scanner for a single control check
type Status string

const (
	StatusOK    Status = "ok"
	StatusInfo  Status = "info"
	StatusSkip  Status = "skip"
	StatusAlarm Status = "alarm"
)

// Finding is one row of a compliance scan export
type Finding struct {
	ControlTitle       string // "13 CloudFront distributions should use HTTPS"
	Status             Status // alarm
	ServiceTitle       string // CloudFront
	Severity           string // high, empty when the export has no severity column
	Title              string // title column as exported; AWS exports use it as the service
	Region             string // us-east-1
	AccountID          string // 123456789012
	Resource           string // arn:aws:cloudfront::123456789012:distribution/E1
	Reason             string // "E1 viewer protocol policy is allow-all"
	ControlDescription string
	// Attributes holds every input column that has no typed field, keyed by column name.
	Attributes map[string]string
}

// HasSeverity reports whether the input row carried a severity value
func (f Finding) HasSeverity() bool {
	return strings.TrimSpace(f.Severity) != ""
}

// Attribute returns a passthrough column value, or an empty string when absent
func (f Finding) Attribute(column string) string {
	if f.Attributes == nil {
		return ""
	}
	return f.Attributes[column]
}

// AnnotatedFinding is a Finding with the derived fields written by the annotation engine
type AnnotatedFinding struct {
	Finding
	Priority       Tier
	Recommendation string
	Color          Color
	// Category is empty when no category claims the service title.
	Category string
	// SeverityColor is set only when the row has a recognised severity value.
	SeverityColor Color
	// Matched is false when the control title had no rule (LookupMiss).
	Matched bool
}

// PriorityRule is one row of the priority/recommendation lookup table
type PriorityRule struct {
	ControlTitle   string
	Priority       Tier // High, Medium or Low
	Recommendation string
}
