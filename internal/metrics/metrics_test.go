package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetricsRecord(t *testing.T) {
	m := New(false)

	m.ObserveHTTP("/api/quotes", http.MethodPost, http.StatusOK, 20*time.Millisecond)
	m.QuoteServed("personal", SourceFallback)
	m.QuoteServed("personal", SourceFallback)
	m.MalformedQuotes("personal", 3)
	m.PlanSave("saved")
	m.Notification("failed")
	m.DraftOperation("save", nil)
	m.DraftOperation("load", errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.quotes.WithLabelValues("personal", SourceFallback)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.malformedQuotes.WithLabelValues("personal")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.drafts.WithLabelValues("load", "error")))

	output := scrape(t, m)
	assert.Contains(t, output, "payment_planner_http_requests_total")
	assert.Contains(t, output, "payment_planner_plans_saves_total")
	assert.Contains(t, output, "payment_planner_notify_summaries_total")
}

func TestMetricsRuntimeCollectors(t *testing.T) {
	output := scrape(t, New(true))
	assert.Contains(t, output, "go_goroutines")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.QuoteServed("housing", SourceProvider)
		m.MalformedQuotes("housing", 1)
		m.PlanSave("saved")
		m.Notification("sent")
		m.DraftOperation("delete", nil)
	})
	scrape(t, m)
}
