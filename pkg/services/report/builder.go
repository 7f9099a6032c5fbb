package report

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// DefaultTitle heads every report unless the caller names it
const DefaultTitle = "Cloud Compliance Report"

// Classifier is the part of the annotation engine the report needs
type Classifier interface {
	IsCompliant(s domain.Status) bool
	IsAlarm(s domain.Status) bool
	SeverityColorFor(raw string) (domain.Color, bool)
	Categories() domain.CategoryMap
	Summarize(findings []domain.AnnotatedFinding) []domain.CategorySummary
}

// Settings names the report
type Settings struct {
	Title  string
	Source string // scan_results.csv
	// Now defaults to time.Now.
	Now func() time.Time
}

var severityOrder = []string{"critical", "high", "medium", "low"}

// Build assembles every view and summary of an annotated scan.
// Findings are expected in input order; the raw view keeps that order.
func Build(c Classifier, findings []domain.AnnotatedFinding, stats domain.AnnotationStats, settings Settings) *domain.ComplianceReport {
	now := time.Now
	if settings.Now != nil {
		now = settings.Now
	}
	title := settings.Title
	if title == "" {
		title = DefaultTitle
	}

	r := &domain.ComplianceReport{
		Title:       title,
		Source:      settings.Source,
		GeneratedAt: now(),
		Stats:       stats,
		Findings:    findings,
	}

	for _, f := range findings {
		switch {
		case c.IsCompliant(f.Status):
			r.Compliant = append(r.Compliant, f)
		case c.IsAlarm(f.Status):
			r.NonCompliant = append(r.NonCompliant, f)
		}
	}

	r.Sections = sections(c.Categories(), findings)
	r.CategorySummaries = c.Summarize(findings)
	r.Priorities, r.PriorityTotal = priorities(findings)
	r.ServicePivot = servicePivot(findings)
	r.OpenIssues = openIssues(c.Categories(), r.NonCompliant)
	r.CompliantPivot = statusPivot(r.Compliant)
	r.NonCompliantPivot = statusPivot(r.NonCompliant)
	r.Severities = severities(c, r.NonCompliant)
	return r
}

func sections(cm domain.CategoryMap, findings []domain.AnnotatedFinding) []domain.CategorySection {
	byRank := make([][]domain.AnnotatedFinding, cm.Len())
	for _, f := range findings {
		if f.Category == "" {
			continue
		}
		if rank := cm.Rank(f.Category); rank < cm.Len() {
			byRank[rank] = append(byRank[rank], f)
		}
	}

	var out []domain.CategorySection
	for i, name := range cm.Names() {
		if len(byRank[i]) == 0 {
			continue
		}
		out = append(out, domain.CategorySection{Category: name, Findings: byRank[i]})
	}
	return out
}

func priorities(findings []domain.AnnotatedFinding) ([]domain.TierCount, int) {
	counts := make(map[domain.Tier]int)
	colors := make(map[domain.Tier]domain.Color)
	for _, f := range findings {
		counts[f.Priority]++
		colors[f.Priority] = f.Color
	}

	var out []domain.TierCount
	total := 0
	for _, t := range domain.TierOrder {
		if counts[t] == 0 {
			continue
		}
		out = append(out, domain.TierCount{Tier: t, Color: colors[t], Count: counts[t]})
		total += counts[t]
	}
	return out, total
}

// Rows without a service title are left out of the pivot.
func servicePivot(findings []domain.AnnotatedFinding) []domain.ServicePivotRow {
	rows := make(map[string]*domain.ServicePivotRow)
	for _, f := range findings {
		if f.ServiceTitle == "" {
			continue
		}
		row, ok := rows[f.ServiceTitle]
		if !ok {
			row = &domain.ServicePivotRow{Service: f.ServiceTitle, Counts: make(map[domain.Tier]int)}
			rows[f.ServiceTitle] = row
		}
		row.Counts[f.Priority]++
		row.Total++
	}

	out := make([]domain.ServicePivotRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

func openIssues(cm domain.CategoryMap, nonCompliant []domain.AnnotatedFinding) []domain.OpenIssueGroup {
	type key struct {
		category, service, control, description string
		priority                                domain.Tier
	}
	groups := make(map[key]*domain.OpenIssueGroup)
	var order []key

	for _, f := range nonCompliant {
		k := key{f.Category, f.ServiceTitle, f.ControlTitle, f.ControlDescription, f.Priority}
		g, ok := groups[k]
		if !ok {
			g = &domain.OpenIssueGroup{
				Category:           f.Category,
				Service:            f.ServiceTitle,
				ControlTitle:       f.ControlTitle,
				ControlDescription: f.ControlDescription,
				Priority:           f.Priority,
				Color:              f.Color,
			}
			groups[k] = g
			order = append(order, k)
		}
		g.OpenIssues++
	}

	out := make([]domain.OpenIssueGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := cm.Rank(a.Category), cm.Rank(b.Category); ra != rb {
			return ra < rb
		}
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		return a.ControlTitle < b.ControlTitle
	})
	return out
}

func statusPivot(findings []domain.AnnotatedFinding) domain.StatusPivot {
	rows := make(map[string]map[domain.Status]int)
	statuses := make(map[domain.Status]struct{})
	for _, f := range findings {
		counts, ok := rows[f.ControlTitle]
		if !ok {
			counts = make(map[domain.Status]int)
			rows[f.ControlTitle] = counts
		}
		counts[f.Status]++
		statuses[f.Status] = struct{}{}
	}

	var p domain.StatusPivot
	for s := range statuses {
		p.Statuses = append(p.Statuses, s)
	}
	sort.Slice(p.Statuses, func(i, j int) bool { return p.Statuses[i] < p.Statuses[j] })

	for title, counts := range rows {
		p.Rows = append(p.Rows, domain.StatusPivotRow{ControlTitle: title, Counts: counts})
	}
	sort.Slice(p.Rows, func(i, j int) bool { return p.Rows[i].ControlTitle < p.Rows[j].ControlTitle })
	return p
}

func severities(c Classifier, nonCompliant []domain.AnnotatedFinding) []domain.SeverityCount {
	counts := make(map[string]int)
	for _, f := range nonCompliant {
		if !f.HasSeverity() {
			continue
		}
		counts[strings.ToLower(strings.TrimSpace(f.Severity))]++
	}
	if len(counts) == 0 {
		return nil
	}

	var names []string
	for _, s := range severityOrder {
		if counts[s] > 0 {
			names = append(names, s)
		}
	}
	var rest []string
	for s := range counts {
		if !slices.Contains(severityOrder, s) {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	out := make([]domain.SeverityCount, 0, len(names))
	for _, s := range names {
		color, ok := c.SeverityColorFor(s)
		if !ok {
			color = domain.ColorWhite
		}
		out = append(out, domain.SeverityCount{Severity: s, Color: color, Count: counts[s]})
	}
	return out
}
