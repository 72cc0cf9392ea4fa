package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	m := New(false)

	m.ObserveLoad("spa", nil)
	m.ObserveLoad("spa", nil)
	m.ObserveLoad("gym", errors.New("not found"))
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveSpeech("unavailable")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.ObserveHTTP("/sessions", http.StatusCreated)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("spa", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("gym", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummaryCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SummaryCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SpeechRequests.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/sessions", "201")))
}

func TestHandler(t *testing.T) {
	m := New(false)
	m.ObserveCache(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `avero_summary_cache_total{result="hit"} 1`)
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(false), New(false)
	a.ObserveCache(true)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SummaryCache.WithLabelValues("hit")))
}
