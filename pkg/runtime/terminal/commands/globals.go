package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
	"github.com/de-tools/compliance-atlas/pkg/services/config"
)

// Globals holds the persistent root flags shared by every command
type Globals struct {
	ConfigPath string
	LogLevel   string
	// LogOutput receives log lines; stderr when nil.
	LogOutput io.Writer
	Now       func() time.Time
}

func (g *Globals) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Logger builds the root logger, console formatted when the output is a terminal
func (g *Globals) Logger() (zerolog.Logger, error) {
	out := g.LogOutput
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if g.LogLevel != "" {
		l, err := zerolog.ParseLevel(g.LogLevel)
		if err != nil {
			return zerolog.Nop(), &domain.ConfigurationError{Op: "log level", Err: err}
		}
		level = l
	}

	w := out
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Context attaches the root logger to ctx
func (g *Globals) Context(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := g.Logger()
	if err != nil {
		return nil, err
	}
	return logger.WithContext(ctx), nil
}

// LoadConfig reads the --config file, or the defaults without one
func (g *Globals) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
