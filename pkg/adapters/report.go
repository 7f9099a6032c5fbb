package adapters

import (
	"github.com/de-tools/compliance-atlas/pkg/models/api"
	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

func MapFindingDomainToApi(f domain.AnnotatedFinding) api.Finding {
	return api.Finding{
		ControlTitle:       f.ControlTitle,
		Status:             string(f.Status),
		Service:            f.ServiceTitle,
		Severity:           f.Severity,
		Title:              f.Title,
		Region:             f.Region,
		AccountID:          f.AccountID,
		Resource:           f.Resource,
		Reason:             f.Reason,
		ControlDescription: f.ControlDescription,
		Attributes:         f.Attributes,
		Priority:           string(f.Priority),
		Recommendation:     f.Recommendation,
		Color:              f.Color.Hex(),
		Category:           f.Category,
		Matched:            f.Matched,
	}
}

func MapComplianceReportDomainToApi(r *domain.ComplianceReport) api.ComplianceReport {
	res := api.ComplianceReport{
		Title:       r.Title,
		Source:      r.Source,
		GeneratedAt: r.GeneratedAt,
		Stats: api.Stats{
			Total:     r.Stats.Total,
			Matched:   r.Stats.Matched,
			Unmatched: r.Stats.Unmatched,
		},
		Categories:    make([]api.CategorySummary, 0, len(r.CategorySummaries)),
		Priorities:    make([]api.TierCount, 0, len(r.Priorities)),
		PriorityTotal: r.PriorityTotal,
		Services:      make([]api.ServicePivotRow, 0, len(r.ServicePivot)),
		OpenIssues:    make([]api.OpenIssueGroup, 0, len(r.OpenIssues)),
		Findings:      make([]api.Finding, 0, len(r.Findings)),
	}

	for _, c := range r.CategorySummaries {
		res.Categories = append(res.Categories, api.CategorySummary{
			Category:   c.Category,
			OpenIssues: c.OpenIssues,
			SafeCount:  c.SafeCount,
			Total:      c.Total,
		})
	}
	for _, p := range r.Priorities {
		res.Priorities = append(res.Priorities, api.TierCount{
			Priority: string(p.Tier),
			Color:    p.Color.Hex(),
			Count:    p.Count,
		})
	}
	for _, s := range r.ServicePivot {
		counts := make(map[string]int, len(s.Counts))
		for tier, n := range s.Counts {
			counts[string(tier)] = n
		}
		res.Services = append(res.Services, api.ServicePivotRow{Service: s.Service, Counts: counts, Total: s.Total})
	}
	for _, g := range r.OpenIssues {
		res.OpenIssues = append(res.OpenIssues, api.OpenIssueGroup{
			Category:           g.Category,
			Service:            g.Service,
			ControlTitle:       g.ControlTitle,
			ControlDescription: g.ControlDescription,
			Priority:           string(g.Priority),
			OpenIssues:         g.OpenIssues,
		})
	}
	for _, s := range r.Severities {
		res.Severities = append(res.Severities, api.SeverityCount{Severity: s.Severity, Count: s.Count})
	}
	for _, f := range r.Findings {
		res.Findings = append(res.Findings, MapFindingDomainToApi(f))
	}
	return res
}
