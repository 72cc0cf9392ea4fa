package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/avero-hq/avero/internal/dataset"
	"github.com/avero-hq/avero/internal/session"
	"github.com/avero-hq/avero/internal/speech"
)

// backend bundles the collaborators built from configuration.
type backend struct {
	loader      *dataset.Loader
	synthesizer speech.Synthesizer
	closer      io.Closer
}

// initBackend opens the configured dataset source and speech provider.
// Callers must Close the returned backend.
func (o *rootOptions) initBackend(ctx context.Context, logger *slog.Logger, loaderOpts ...dataset.LoaderOption) (*backend, error) {
	source, closer, err := dataset.NewSource(ctx, o.cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset source: %w", err)
	}

	synth, err := speech.New(o.cfg.Speech)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to configure speech: %w", err)
	}

	loaderOpts = append([]dataset.LoaderOption{dataset.WithLogger(logger)}, loaderOpts...)
	return &backend{
		loader:      dataset.NewLoader(source, loaderOpts...),
		synthesizer: synth,
		closer:      closer,
	}, nil
}

func (b *backend) Close() error {
	return b.closer.Close()
}

// sessionDeps returns the dependencies for sessions served by this backend.
func (o *rootOptions) sessionDeps(b *backend, logger *slog.Logger) session.Deps {
	return session.Deps{
		Loader:        b.loader,
		CacheSize:     o.cfg.Cache.Size,
		Synthesizer:   b.synthesizer,
		SpeechTimeout: o.cfg.Speech.Timeout,
		Logger:        logger,
	}
}

// datasetNames lists what the source can serve, falling back to the
// configured names.
func (o *rootOptions) datasetNames(ctx context.Context, b *backend) ([]string, error) {
	names, err := b.loader.Names(ctx, o.cfg.Data.Datasets)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return names, nil
}
