package annotation

import (
	"fmt"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// Palette maps resolved tiers to display colors
type Palette map[domain.Tier]domain.Color

// DefaultPalette returns the tier colors used by every report
func DefaultPalette() Palette {
	return Palette{
		domain.TierHigh:     domain.ColorRed,
		domain.TierMedium:   domain.ColorOrange,
		domain.TierLow:      domain.ColorYellow,
		domain.TierSafe:     domain.ColorGreen,
		domain.TierNoData:   domain.ColorWhite,
		domain.TierCritical: domain.ColorPurple,
	}
}

// Config describes the variant of the join-and-bucket pass to run
type Config struct {
	// CompliantStatuses are reported as Safe/Well Architected when their control has a rule.
	CompliantStatuses []domain.Status
	// AlarmStatus marks a non-compliant finding.
	AlarmStatus domain.Status
	Palette     Palette
	// CriticalSeverity enables the severity palette that recognises "critical".
	CriticalSeverity bool
	Categories       domain.CategoryMap
	// Workers bounds parallel annotation; values below 2 annotate sequentially.
	Workers int
}

// DefaultConfig returns the AWS variant with the standard status sets
func DefaultConfig() Config {
	return Config{
		CompliantStatuses: []domain.Status{domain.StatusOK, domain.StatusInfo, domain.StatusSkip},
		AlarmStatus:       domain.StatusAlarm,
		Palette:           DefaultPalette(),
		Categories:        domain.AWSCategories(),
		Workers:           1,
	}
}

func (c Config) validate() error {
	if len(c.CompliantStatuses) == 0 {
		return fmt.Errorf("at least one compliant status is required")
	}
	if c.AlarmStatus == "" {
		return fmt.Errorf("alarm status cannot be empty")
	}
	for _, s := range c.CompliantStatuses {
		if s == c.AlarmStatus {
			return fmt.Errorf("status %q cannot be both compliant and alarm", s)
		}
	}
	for _, t := range []domain.Tier{domain.TierHigh, domain.TierMedium, domain.TierLow, domain.TierSafe, domain.TierNoData} {
		if _, ok := c.Palette[t]; !ok {
			return fmt.Errorf("palette has no color for tier %q", t)
		}
	}
	return nil
}
