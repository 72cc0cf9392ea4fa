// Package speech converts narrator text to audio through an external provider.
package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/avero-hq/avero/internal/config"
)

// Synthesizer turns text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// New creates the synthesizer selected by cfg.Provider.
// It returns nil, nil when speech is disabled.
func New(cfg config.SpeechConfig) (Synthesizer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", config.SpeechNone:
		return nil, nil
	case config.SpeechOpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported speech provider: %s", cfg.Provider)
	}
}
