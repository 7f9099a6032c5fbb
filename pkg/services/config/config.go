package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/services/annotation"
)

type Config struct {
	Rules             string            `mapstructure:"rules"`
	Provider          string            `mapstructure:"provider"`
	Categories        string            `mapstructure:"categories"`
	CompliantStatuses []string          `mapstructure:"compliant_statuses"`
	AlarmStatus       string            `mapstructure:"alarm_status"`
	CriticalSeverity  bool              `mapstructure:"critical_severity"`
	Workers           int               `mapstructure:"workers"`
	Formats           []string          `mapstructure:"formats"`
	History           HistoryConfig     `mapstructure:"history"`
	AWS               AWSConfig         `mapstructure:"aws"`
	Palette           map[string]string `mapstructure:"palette"`
}

type HistoryConfig struct {
	DB string `mapstructure:"db"` // compliance-history.duckdb, empty disables run history
}

type AWSConfig struct {
	Profile string `mapstructure:"profile"`
	Region  string `mapstructure:"region"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(domain.ProviderAWS))
	v.SetDefault("compliant_statuses", []string{"ok", "info", "skip"})
	v.SetDefault("alarm_status", "alarm")
	v.SetDefault("workers", 1)
	v.SetDefault("formats", []string{"xlsx"})
}

// Default returns the configuration used when no config file is given
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoadConfig reads a YAML config file on top of the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, &domain.ConfigurationError{Op: "config", Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &domain.ConfigurationError{Op: "config", Err: fmt.Errorf("failed to parse config: %w", err)}
	}
	return &cfg, nil
}

// AnnotationConfig resolves the engine variant: statuses, palette and category map
func (c *Config) AnnotationConfig() (annotation.Config, error) {
	provider, err := domain.ParseProvider(c.Provider)
	if err != nil {
		return annotation.Config{}, &domain.ConfigurationError{Op: "config", Err: err}
	}

	out := annotation.DefaultConfig()
	out.Categories = provider.Categories()
	out.CriticalSeverity = c.CriticalSeverity
	if c.Workers > 0 {
		out.Workers = c.Workers
	}
	if c.AlarmStatus != "" {
		out.AlarmStatus = domain.Status(c.AlarmStatus)
	}
	if len(c.CompliantStatuses) > 0 {
		out.CompliantStatuses = make([]domain.Status, 0, len(c.CompliantStatuses))
		for _, s := range c.CompliantStatuses {
			out.CompliantStatuses = append(out.CompliantStatuses, domain.Status(s))
		}
	}

	for name, raw := range c.Palette {
		tier, ok := parseTierName(name)
		if !ok {
			return annotation.Config{}, &domain.ConfigurationError{Op: "config", Err: fmt.Errorf("palette: unknown tier %q", name)}
		}
		color, err := domain.ParseColor(raw)
		if err != nil {
			return annotation.Config{}, &domain.ConfigurationError{Op: "config", Err: fmt.Errorf("palette: %w", err)}
		}
		out.Palette[tier] = color
	}

	if c.Categories != "" {
		cm, err := LoadCategories(c.Categories)
		if err != nil {
			return annotation.Config{}, err
		}
		out.Categories = cm
	}
	return out, nil
}

// Viper lowercases map keys, so palette tiers are matched case-insensitively.
func parseTierName(raw string) (domain.Tier, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", " ") {
	case "critical":
		return domain.TierCritical, true
	case "high":
		return domain.TierHigh, true
	case "medium":
		return domain.TierMedium, true
	case "low":
		return domain.TierLow, true
	case "safe", "safe/well architected":
		return domain.TierSafe, true
	case "no data", "nodata":
		return domain.TierNoData, true
	}
	return "", false
}
