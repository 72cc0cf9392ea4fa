// Package metrics exposes Prometheus collectors for loads, cache lookups,
// speech requests, sessions and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "avero"

// Load results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds every collector, registered on one registry.
// It satisfies dataset.LoadObserver, aggregate.CacheObserver and
// narrator.SpeechObserver.
type Metrics struct {
	registry *prometheus.Registry

	DatasetLoads   *prometheus.CounterVec
	SummaryCache   *prometheus.CounterVec
	SpeechRequests *prometheus.CounterVec
	SessionsActive prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
}

// New registers the collectors on a fresh registry. When withRuntime is set
// the Go and process collectors are registered too.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DatasetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by dataset and result.",
		}, []string{"dataset", "result"}),
		SummaryCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Summary cache lookups by result (hit or miss).",
		}, []string{"result"}),
		SpeechRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_requests_total",
			Help:      "Speech synthesis requests by result.",
		}, []string{"result"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of open sessions.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLoad counts one dataset load.
func (m *Metrics) ObserveLoad(dataset string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.DatasetLoads.WithLabelValues(dataset, result).Inc()
}

// ObserveCache counts one summary cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SummaryCache.WithLabelValues(result).Inc()
}

// ObserveSpeech counts one speech request.
func (m *Metrics) ObserveSpeech(result string) {
	m.SpeechRequests.WithLabelValues(result).Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	m.SessionsActive.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	m.SessionsActive.Dec()
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(route string, code int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
