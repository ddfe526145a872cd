// Package metrics exposes the planner's prometheus instrumentation. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payment_planner"

// Quote sources.
const (
	SourceProvider = "provider"
	SourceFallback = "fallback"
	SourceRejected = "rejected"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	quotes          *prometheus.CounterVec
	malformedQuotes *prometheus.CounterVec
	planSaves       *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	drafts          *prometheus.CounterVec
}

// New creates and registers all collectors. Go and process collectors are
// included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	registry := prometheus.NewRegistry()
	if withRuntime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		)
	}

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "requests_total",
			Help:      "Quote requests by credit category and source of the offers.",
		}, []string{"category", "source"}),
		malformedQuotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "malformed_total",
			Help:      "Provider records dropped because a numeric field did not parse.",
		}, []string{"category"}),
		planSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "plans",
			Name:      "saves_total",
			Help:      "Plan save and update attempts by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "summaries_total",
			Help:      "Plan summary e-mails by outcome.",
		}, []string{"outcome"}),
		drafts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drafts",
			Name:      "operations_total",
			Help:      "Draft store operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.quotes,
		m.malformedQuotes,
		m.planSaves,
		m.notifications,
		m.drafts,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// QuoteServed records where the offers of a quote request came from.
func (m *Metrics) QuoteServed(category, source string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(category, source).Inc()
}

// MalformedQuotes records dropped provider records.
func (m *Metrics) MalformedQuotes(category string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.malformedQuotes.WithLabelValues(category).Add(float64(count))
}

// PlanSave records the outcome of a save or update: saved, rejected or failed.
func (m *Metrics) PlanSave(outcome string) {
	if m == nil {
		return
	}
	m.planSaves.WithLabelValues(outcome).Inc()
}

// Notification records the outcome of a summary e-mail: sent or failed.
func (m *Metrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

// DraftOperation records a draft store call.
func (m *Metrics) DraftOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.drafts.WithLabelValues(operation, outcome).Inc()
}
