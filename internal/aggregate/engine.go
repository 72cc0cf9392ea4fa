// Package aggregate computes summary metrics over datasets and caches them by
// dataset content.
package aggregate

import (
	"log/slog"

	"github.com/avero-hq/avero/internal/model"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
)

// DefaultCacheSize bounds the summary cache when no size is configured.
const DefaultCacheSize = 32

// CacheObserver is notified of every cache lookup.
type CacheObserver interface {
	ObserveCache(hit bool)
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int
	Misses int
}

// Engine derives summary metrics. Results are cached by dataset fingerprint,
// so a reloaded dataset with identical rows is served from the cache while
// edited content under the same name is recomputed.
// An Engine belongs to one session and is not safe for concurrent use.
type Engine struct {
	cache    *lru.Cache[string, model.SummaryMetrics]
	logger   *slog.Logger
	observer CacheObserver
	stats    Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver registers a cache observer.
func WithObserver(o CacheObserver) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// NewEngine creates an engine whose cache holds at most size entries.
func NewEngine(size int, opts ...Option) *Engine {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, model.SummaryMetrics](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}

	e := &Engine{
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary returns the totals of ds. Sums are exact; nothing is rounded.
// An empty dataset yields zero metrics and is not cached.
func (e *Engine) Summary(ds *model.Dataset) model.SummaryMetrics {
	if ds.Len() == 0 {
		return zeroMetrics()
	}

	key := ds.Fingerprint()
	if cached, ok := e.cache.Get(key); ok {
		e.record(true)
		return cached
	}
	e.record(false)

	summary := Compute(ds)
	e.cache.Add(key, summary)

	e.logger.Debug("summary computed",
		"dataset", ds.Name(),
		"rows", ds.Len(),
		"revenue", summary.TotalRevenue.String())
	return summary
}

func (e *Engine) record(hit bool) {
	if hit {
		e.stats.Hits++
	} else {
		e.stats.Misses++
	}
	if e.observer != nil {
		e.observer.ObserveCache(hit)
	}
}

// Stats returns the lookup counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Len returns the number of cached summaries.
func (e *Engine) Len() int {
	return e.cache.Len()
}

// Purge drops every cached summary.
func (e *Engine) Purge() {
	e.cache.Purge()
}

// Compute sums every row of ds without consulting any cache.
func Compute(ds *model.Dataset) model.SummaryMetrics {
	summary := zeroMetrics()
	for i := 0; i < ds.Len(); i++ {
		p := ds.At(i)
		summary.TotalRevenue = summary.TotalRevenue.Add(p.Revenue)
		summary.TotalExpenses = summary.TotalExpenses.Add(p.Expenses)
		summary.TotalBookings += p.Bookings
		summary.TotalClients += p.Clients
	}
	return summary
}

func zeroMetrics() model.SummaryMetrics {
	return model.SummaryMetrics{
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
}
