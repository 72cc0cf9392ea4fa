package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avero-hq/avero/internal/model"
)

// UnknownDataset is reported to observers in place of a name that no source
// could resolve, so caller-supplied names never become labels.
const UnknownDataset = "unknown"

// LoadObserver is notified of every load attempt.
type LoadObserver interface {
	ObserveLoad(dataset string, err error)
}

// Loader turns dataset names into validated datasets.
type Loader struct {
	source   Source
	logger   *slog.Logger
	observer LoadObserver
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithObserver registers a load observer, typically metrics.
func WithObserver(o LoadObserver) LoaderOption {
	return func(l *Loader) {
		l.observer = o
	}
}

// NewLoader creates a loader reading from source.
func NewLoader(source Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and validates the named dataset. Failures are *LoadError values.
func (l *Loader) Load(ctx context.Context, name string) (*model.Dataset, error) {
	ds, err := l.load(ctx, name)
	if l.observer != nil {
		label := name
		if errors.Is(err, ErrNotFound) {
			label = UnknownDataset
		}
		l.observer.ObserveLoad(label, err)
	}
	if err != nil {
		l.logger.Warn("dataset load failed", "dataset", name, "error", err)
		return nil, err
	}

	l.logger.Debug("dataset loaded",
		"dataset", name,
		"rows", ds.Len(),
		"fingerprint", ds.Fingerprint()[:12])
	return ds, nil
}

func (l *Loader) load(ctx context.Context, name string) (*model.Dataset, error) {
	rows, closer, err := l.source.Open(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &LoadError{Kind: ErrNotFound, Dataset: name, Err: err}
		}
		return nil, fmt.Errorf("open dataset %q: %w", name, err)
	}
	defer func() { _ = closer.Close() }()

	points, err := parseTable(name, rows)
	if err != nil {
		return nil, err
	}
	return model.NewDataset(name, points), nil
}

// Names lists the datasets the source can serve, or fallback when the
// source cannot enumerate them.
func (l *Loader) Names(ctx context.Context, fallback []string) ([]string, error) {
	lister, ok := l.source.(Lister)
	if !ok {
		return fallback, nil
	}
	return lister.Names(ctx)
}
