package annotation

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

var leadingOrdinal = regexp.MustCompile(`^\d+\s+`)

// NormalizeControlTitle strips a leading ordinal such as "13 " from a control title.
// Case and inner whitespace are preserved: the rule lookup is exact.
func NormalizeControlTitle(raw string) string {
	return leadingOrdinal.ReplaceAllString(raw, "")
}

// Engine annotates findings with priority, recommendation, color and category.
// It holds only read-only state and is safe for concurrent use.
type Engine struct {
	rules     domain.RuleTable
	cfg       Config
	compliant map[domain.Status]struct{}
}

// NewEngine builds an engine over a rule table
func NewEngine(rules domain.RuleTable, cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, &domain.ConfigurationError{Op: "annotation config", Err: err}
	}

	compliant := make(map[domain.Status]struct{}, len(cfg.CompliantStatuses))
	for _, s := range cfg.CompliantStatuses {
		compliant[s] = struct{}{}
	}

	palette := make(Palette, len(cfg.Palette))
	for k, v := range cfg.Palette {
		palette[k] = v
	}
	cfg.Palette = palette

	return &Engine{rules: rules, cfg: cfg, compliant: compliant}, nil
}

// IsCompliant reports whether the status counts as compliant
func (e *Engine) IsCompliant(s domain.Status) bool {
	_, ok := e.compliant[s]
	return ok
}

// IsAlarm reports whether the status marks a non-compliant finding
func (e *Engine) IsAlarm(s domain.Status) bool {
	return s == e.cfg.AlarmStatus
}

// Categories returns the category map the engine buckets with
func (e *Engine) Categories() domain.CategoryMap {
	return e.cfg.Categories
}

// ResolvePriority joins the finding against the rule table
func (e *Engine) ResolvePriority(f domain.Finding) (domain.Tier, string) {
	tier, recommendation, _ := e.resolve(f)
	return tier, recommendation
}

func (e *Engine) resolve(f domain.Finding) (domain.Tier, string, bool) {
	rule, ok := e.rules.Lookup(NormalizeControlTitle(f.ControlTitle))
	if !ok {
		return domain.TierNoData, domain.NoRecommendation, false
	}
	if e.IsCompliant(f.Status) {
		return domain.TierSafe, rule.Recommendation, true
	}
	return rule.Priority, rule.Recommendation, true
}

// ColorFor maps a tier to its color. Tiers outside the palette are white.
func (e *Engine) ColorFor(tier domain.Tier) domain.Color {
	if c, ok := e.cfg.Palette[tier]; ok {
		return c
	}
	return domain.ColorWhite
}

// SeverityColorFor colors a raw severity value, case-insensitively.
// "critical" is recognised only when the engine runs the severity variant.
func (e *Engine) SeverityColorFor(raw string) (domain.Color, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		if !e.cfg.CriticalSeverity {
			return "", false
		}
		return e.ColorFor(domain.TierCritical), true
	case "high":
		return e.ColorFor(domain.TierHigh), true
	case "medium":
		return e.ColorFor(domain.TierMedium), true
	case "low":
		return e.ColorFor(domain.TierLow), true
	}
	return "", false
}

// Categorize returns the category owning the finding's service title
func (e *Engine) Categorize(f domain.Finding) (string, bool) {
	return e.cfg.Categories.Lookup(f.ServiceTitle)
}

// AnnotateOne derives every annotated field of a single finding
func (e *Engine) AnnotateOne(f domain.Finding) domain.AnnotatedFinding {
	tier, recommendation, matched := e.resolve(f)
	category, _ := e.Categorize(f)

	af := domain.AnnotatedFinding{
		Finding:        f,
		Priority:       tier,
		Recommendation: recommendation,
		Color:          e.ColorFor(tier),
		Category:       category,
		Matched:        matched,
	}
	if c, ok := e.SeverityColorFor(f.Severity); ok {
		af.SeverityColor = c
	}
	return af
}

// Annotate runs the join-and-bucket pass over all findings, preserving input order.
// Unmatched control titles never fail the batch; they are counted in the returned stats.
func (e *Engine) Annotate(ctx context.Context, findings []domain.Finding) ([]domain.AnnotatedFinding, domain.AnnotationStats, error) {
	logger := zerolog.Ctx(ctx)
	out := make([]domain.AnnotatedFinding, len(findings))

	if e.cfg.Workers < 2 {
		for i, f := range findings {
			out[i] = e.AnnotateOne(f)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Workers)
		for i := range findings {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = e.AnnotateOne(findings[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, domain.AnnotationStats{}, err
		}
	}

	stats := domain.AnnotationStats{Total: len(out)}
	for _, af := range out {
		if af.Matched {
			stats.Matched++
			continue
		}
		stats.Unmatched++
		logger.Debug().
			Str("control_title", NormalizeControlTitle(af.ControlTitle)).
			Msg("no priority rule for control")
	}
	if stats.Unmatched > 0 {
		logger.Warn().Int("rows", stats.Unmatched).Msg("findings without a priority rule were marked as No data")
	}

	return out, stats, nil
}

// Summarize counts open and safe findings per category.
// Categories that no finding falls into are omitted.
func (e *Engine) Summarize(findings []domain.AnnotatedFinding) []domain.CategorySummary {
	type counts struct {
		seen       bool
		open, safe int
	}
	byCategory := make([]counts, e.cfg.Categories.Len())
	names := e.cfg.Categories.Names()

	for _, f := range findings {
		name, ok := e.Categorize(f.Finding)
		if !ok {
			continue
		}
		c := &byCategory[e.cfg.Categories.Rank(name)]
		c.seen = true
		switch {
		case e.IsAlarm(f.Status):
			c.open++
		case e.IsCompliant(f.Status):
			c.safe++
		}
	}

	var summaries []domain.CategorySummary
	for i, c := range byCategory {
		if !c.seen {
			continue
		}
		summaries = append(summaries, domain.CategorySummary{
			Category:   names[i],
			OpenIssues: c.open,
			SafeCount:  c.safe,
			Total:      c.open + c.safe,
		})
	}
	return summaries
}
