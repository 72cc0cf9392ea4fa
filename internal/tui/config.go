package tui

import (
	"context"
	"log/slog"

	"github.com/avero-hq/avero/internal/narrator"
	"github.com/avero-hq/avero/internal/session"
	"github.com/avero-hq/avero/internal/tui/themes"
)

// Controller is the session surface the dashboard drives. *session.Session
// satisfies it.
type Controller interface {
	Render(ctx context.Context, req session.Request) (session.View, error)
	Dispatch(ev session.Event) (session.Outcome, error)
	Speak(ctx context.Context, text string) <-chan narrator.SpeechResult
	CanSpeak() bool
}

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	Controller Controller
	Logger     *slog.Logger
	// SpeechPath receives synthesized audio; empty keeps it in memory only.
	SpeechPath string
	Datasets   []string
	Width      int
	Height     int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Logger: slog.Default(),
		Width:  100,
		Height: 30,
	}
}

// WithController sets the session the dashboard renders.
func WithController(c Controller) Option {
	return func(cfg *Config) {
		cfg.Controller = c
	}
}

// WithDatasets sets the selectable dataset names.
func WithDatasets(names []string) Option {
	return func(cfg *Config) {
		cfg.Datasets = names
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(cfg *Config) {
		cfg.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(cfg *Config) {
		cfg.Width = width
		cfg.Height = height
	}
}

// WithLogger sets the logger. The dashboard owns the terminal, so this
// should not write to stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// WithSpeechPath writes synthesized audio to path.
func WithSpeechPath(path string) Option {
	return func(cfg *Config) {
		cfg.SpeechPath = path
	}
}
