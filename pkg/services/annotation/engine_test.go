package annotation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

func newTestEngine(t *testing.T, cfg Config, rules ...domain.PriorityRule) *Engine {
	t.Helper()
	e, err := NewEngine(domain.NewRuleTable(rules), cfg)
	require.NoError(t, err)
	return e
}

func TestNormalizeControlTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"13 CloudFront distributions should use HTTPS", "CloudFront distributions should use HTTPS"},
		{"CloudFront distributions...", "CloudFront distributions..."},
		{"5 IAM password policy", "IAM password policy"},
		{"5  IAM password policy", "IAM password policy"},
		{"5IAM password policy", "5IAM password policy"},
		{"S3 buckets should block public access", "S3 buckets should block public access"},
		{" 13 leading space", " 13 leading space"},
		{"13 lower  Case", "lower  Case"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeControlTitle(tt.in))
		})
	}
}

func TestEngine_ResolvePriority(t *testing.T) {
	rules := []domain.PriorityRule{
		{ControlTitle: "IAM password policy", Priority: domain.TierHigh, Recommendation: "Rotate keys"},
		{ControlTitle: "EBS volumes should be encrypted", Priority: domain.TierMedium, Recommendation: "Enable encryption"},
		{ControlTitle: "VPC flow logs should be enabled", Priority: domain.TierLow, Recommendation: "Enable flow logs"},
	}
	e := newTestEngine(t, DefaultConfig(), rules...)

	t.Run("compliant statuses are always safe", func(t *testing.T) {
		for _, rule := range rules {
			for _, status := range []domain.Status{domain.StatusOK, domain.StatusInfo, domain.StatusSkip} {
				tier, rec := e.ResolvePriority(domain.Finding{ControlTitle: rule.ControlTitle, Status: status})
				assert.Equal(t, domain.TierSafe, tier, "%s/%s", rule.ControlTitle, status)
				assert.Equal(t, rule.Recommendation, rec)
			}
		}
	})

	t.Run("alarm takes the rule tier", func(t *testing.T) {
		for _, rule := range rules {
			tier, rec := e.ResolvePriority(domain.Finding{ControlTitle: rule.ControlTitle, Status: domain.StatusAlarm})
			assert.Equal(t, rule.Priority, tier)
			assert.Equal(t, rule.Recommendation, rec)
		}
	})

	t.Run("unmatched title falls back to no data", func(t *testing.T) {
		for _, status := range []domain.Status{domain.StatusOK, domain.StatusAlarm, "error"} {
			tier, rec := e.ResolvePriority(domain.Finding{ControlTitle: "Unknown control", Status: status})
			assert.Equal(t, domain.TierNoData, tier)
			assert.Equal(t, domain.NoRecommendation, rec)
		}
	})

	t.Run("lookup is case sensitive", func(t *testing.T) {
		tier, _ := e.ResolvePriority(domain.Finding{ControlTitle: "iam password policy", Status: domain.StatusAlarm})
		assert.Equal(t, domain.TierNoData, tier)
	})

	t.Run("leading ordinal is stripped before lookup", func(t *testing.T) {
		tier, rec := e.ResolvePriority(domain.Finding{ControlTitle: "12 VPC flow logs should be enabled", Status: domain.StatusAlarm})
		assert.Equal(t, domain.TierLow, tier)
		assert.Equal(t, "Enable flow logs", rec)
	})

	t.Run("unknown status resolves like alarm", func(t *testing.T) {
		tier, _ := e.ResolvePriority(domain.Finding{ControlTitle: "IAM password policy", Status: "error"})
		assert.Equal(t, domain.TierHigh, tier)
	})
}

func TestEngine_ColorFor(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	want := map[domain.Tier]domain.Color{
		domain.TierHigh:   domain.ColorRed,
		domain.TierMedium: domain.ColorOrange,
		domain.TierLow:    domain.ColorYellow,
		domain.TierSafe:   domain.ColorGreen,
		domain.TierNoData: domain.ColorWhite,
	}
	for tier, color := range want {
		for i := 0; i < 3; i++ {
			assert.Equal(t, color, e.ColorFor(tier), "tier %s call %d", tier, i)
		}
	}
	assert.Equal(t, domain.ColorWhite, e.ColorFor("Bogus"))
}

func TestEngine_SeverityColorFor(t *testing.T) {
	t.Run("default variant ignores critical", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig())
		_, ok := e.SeverityColorFor("critical")
		assert.False(t, ok)

		c, ok := e.SeverityColorFor("HIGH")
		assert.True(t, ok)
		assert.Equal(t, domain.ColorRed, c)
	})

	t.Run("critical variant", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CriticalSeverity = true
		e := newTestEngine(t, cfg)

		cases := map[string]domain.Color{
			"Critical": domain.ColorPurple,
			"high":     domain.ColorRed,
			"Medium":   domain.ColorOrange,
			"low":      domain.ColorYellow,
		}
		for raw, want := range cases {
			c, ok := e.SeverityColorFor(raw)
			assert.True(t, ok, raw)
			assert.Equal(t, want, c, raw)
		}
		_, ok := e.SeverityColorFor("")
		assert.False(t, ok)
	})
}

func TestEngine_Categorize(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	name, ok := e.Categorize(domain.Finding{ServiceTitle: "EC2"})
	assert.True(t, ok)
	assert.Equal(t, "Compute", name)

	_, ok = e.Categorize(domain.Finding{ServiceTitle: "UnknownService"})
	assert.False(t, ok)

	cfg := DefaultConfig()
	cfg.Categories = domain.MustCategoryMap([]domain.Category{{Name: "Everything", Services: []string{"EC2"}}})
	alt := newTestEngine(t, cfg)
	name, ok = alt.Categorize(domain.Finding{ServiceTitle: "EC2"})
	assert.True(t, ok)
	assert.Equal(t, "Everything", name)
}

func TestEngine_Summarize(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	t.Run("omits empty categories", func(t *testing.T) {
		findings := []domain.AnnotatedFinding{
			{Finding: domain.Finding{ServiceTitle: "EC2", Status: domain.StatusAlarm}},
			{Finding: domain.Finding{ServiceTitle: "Lambda", Status: domain.StatusAlarm}},
			{Finding: domain.Finding{ServiceTitle: "EC2", Status: domain.StatusOK}},
		}

		got := e.Summarize(findings)
		require.Len(t, got, 1)
		assert.Equal(t, domain.CategorySummary{Category: "Compute", OpenIssues: 2, SafeCount: 1, Total: 3}, got[0])
	})

	t.Run("follows category map order", func(t *testing.T) {
		findings := []domain.AnnotatedFinding{
			{Finding: domain.Finding{ServiceTitle: "RDS", Status: domain.StatusInfo}},
			{Finding: domain.Finding{ServiceTitle: "IAM", Status: domain.StatusSkip}},
			{Finding: domain.Finding{ServiceTitle: "Mystery", Status: domain.StatusAlarm}},
		}

		got := e.Summarize(findings)
		require.Len(t, got, 2)
		assert.Equal(t, "Security and Identity", got[0].Category)
		assert.Equal(t, "Database", got[1].Category)
	})

	t.Run("unknown statuses are not counted", func(t *testing.T) {
		findings := []domain.AnnotatedFinding{
			{Finding: domain.Finding{ServiceTitle: "S3", Status: "error"}},
		}

		got := e.Summarize(findings)
		require.Len(t, got, 1)
		assert.Equal(t, domain.CategorySummary{Category: "Storage"}, got[0])
	})
}

func TestEngine_Annotate(t *testing.T) {
	rule := domain.PriorityRule{ControlTitle: "IAM password policy", Priority: domain.TierHigh, Recommendation: "Rotate keys"}

	t.Run("end to end row", func(t *testing.T) {
		e := newTestEngine(t, DefaultConfig(), rule)

		got, stats, err := e.Annotate(context.Background(), []domain.Finding{
			{ControlTitle: "5 IAM password policy", Status: domain.StatusAlarm, ServiceTitle: "IAM", Region: "us-east-1"},
			{ControlTitle: "Unknown", Status: domain.StatusOK, ServiceTitle: "Nothing"},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, domain.TierHigh, got[0].Priority)
		assert.Equal(t, "Rotate keys", got[0].Recommendation)
		assert.Equal(t, domain.ColorRed, got[0].Color)
		assert.Equal(t, "Security and Identity", got[0].Category)
		assert.Equal(t, "us-east-1", got[0].Region)
		assert.True(t, got[0].Matched)

		assert.Equal(t, domain.TierNoData, got[1].Priority)
		assert.Equal(t, domain.ColorWhite, got[1].Color)
		assert.Empty(t, got[1].Category)
		assert.False(t, got[1].Matched)

		assert.Equal(t, domain.AnnotationStats{Total: 2, Matched: 1, Unmatched: 1}, stats)
	})

	t.Run("parallel annotation preserves order", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Workers = 4
		e := newTestEngine(t, cfg, rule)

		findings := make([]domain.Finding, 200)
		for i := range findings {
			findings[i] = domain.Finding{ControlTitle: fmt.Sprintf("%d IAM password policy", i), Status: domain.StatusAlarm, Resource: fmt.Sprintf("r-%d", i)}
		}

		got, stats, err := e.Annotate(context.Background(), findings)
		require.NoError(t, err)
		require.Len(t, got, len(findings))
		for i, af := range got {
			assert.Equal(t, fmt.Sprintf("r-%d", i), af.Resource)
			assert.Equal(t, domain.TierHigh, af.Priority)
		}
		assert.Equal(t, 200, stats.Matched)
	})

	t.Run("cancelled context aborts parallel run", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Workers = 2
		e := newTestEngine(t, cfg, rule)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := e.Annotate(ctx, []domain.Finding{{ControlTitle: "IAM password policy"}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CompliantStatuses = []domain.Status{domain.StatusOK, domain.StatusAlarm}

	_, err := NewEngine(domain.NewRuleTable(nil), cfg)
	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	cfg = DefaultConfig()
	delete(cfg.Palette, domain.TierSafe)
	_, err = NewEngine(domain.NewRuleTable(nil), cfg)
	assert.Error(t, err)
}
