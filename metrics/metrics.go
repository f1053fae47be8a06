// Package metrics exposes Prometheus counters for the API and the catalog service.
//
// All recording methods are safe to call on a nil *Metrics, which disables recording.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cinetrack"

type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts requests by route template, method and status.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes request latency by route template and method.
	HTTPDuration *prometheus.HistogramVec
	// Suggestions counts served suggestions by strategy (genre, popular, random, none).
	Suggestions *prometheus.CounterVec
	// ProgressUpdates counts playback progress writes by completed state.
	ProgressUpdates *prometheus.CounterVec
	// Ratings counts rating writes by result (created, updated).
	Ratings *prometheus.CounterVec
	// FavoriteToggles counts favorite toggles by action (added, removed).
	FavoriteToggles *prometheus.CounterVec
}

// New creates all metrics in a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"route", "method"}),
		Suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_total",
			Help:      "Suggestions served by strategy.",
		}, []string{"strategy"}),
		ProgressUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_updates_total",
			Help:      "Playback progress updates.",
		}, []string{"completed"}),
		Ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_total",
			Help:      "Rating submissions.",
		}, []string{"result"}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles.",
		}, []string{"action"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.Suggestions,
		m.ProgressUpdates,
		m.Ratings,
		m.FavoriteToggles,
	)
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(latency.Seconds())
}

// SuggestionServed records the strategy that produced a suggestion.
func (m *Metrics) SuggestionServed(strategy string) {
	if m == nil {
		return
	}
	m.Suggestions.WithLabelValues(strategy).Inc()
}

// ProgressRecorded records a playback progress write.
func (m *Metrics) ProgressRecorded(completed bool) {
	if m == nil {
		return
	}
	m.ProgressUpdates.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

// RatingRecorded records a rating write.
func (m *Metrics) RatingRecorded(created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.Ratings.WithLabelValues(result).Inc()
}

// FavoriteToggled records a favorite toggle.
func (m *Metrics) FavoriteToggled(added bool) {
	if m == nil {
		return
	}
	action := "removed"
	if added {
		action = "added"
	}
	m.FavoriteToggles.WithLabelValues(action).Inc()
}
