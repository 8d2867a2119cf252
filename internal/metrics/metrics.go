// Package metrics exposes Prometheus instrumentation for the broadcast loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for broadcast operations.
type Metrics struct {
	registry                 *prometheus.Registry
	broadcastsScheduledTotal prometheus.Counter
	broadcastsStartedTotal   prometheus.Counter
	broadcastsEndedTotal     prometheus.Counter
	apiCallsTotal            prometheus.Counter
	apiRetriesTotal          prometheus.Counter
	cleanupDeletedTotal      prometheus.Counter
	broadcastsScheduled      prometheus.Gauge
	broadcastsLive           prometheus.Gauge
}

// New creates and registers Prometheus metrics for the broadcast loop.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	broadcastsScheduledTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytlive_broadcasts_scheduled_total",
		Help: "Total number of broadcasts scheduled",
	})
	broadcastsStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytlive_broadcasts_started_total",
		Help: "Total number of broadcasts transitioned to live",
	})
	broadcastsEndedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytlive_broadcasts_ended_total",
		Help: "Total number of broadcasts transitioned to complete",
	})
	apiCallsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytlive_api_calls_total",
		Help: "Total number of YouTube API operations attempted",
	})
	apiRetriesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytlive_api_retries_total",
		Help: "Total number of retried YouTube API attempts",
	})
	cleanupDeletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytlive_cleanup_deleted_total",
		Help: "Total number of orphaned upcoming broadcasts deleted at startup",
	})
	broadcastsScheduled := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytlive_broadcasts_scheduled",
		Help: "Number of broadcasts currently tracked as scheduled",
	})
	broadcastsLive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytlive_broadcasts_live",
		Help: "Number of broadcasts currently tracked as live",
	})

	registry.MustRegister(
		broadcastsScheduledTotal,
		broadcastsStartedTotal,
		broadcastsEndedTotal,
		apiCallsTotal,
		apiRetriesTotal,
		cleanupDeletedTotal,
		broadcastsScheduled,
		broadcastsLive,
	)

	return &Metrics{
		registry:                 registry,
		broadcastsScheduledTotal: broadcastsScheduledTotal,
		broadcastsStartedTotal:   broadcastsStartedTotal,
		broadcastsEndedTotal:     broadcastsEndedTotal,
		apiCallsTotal:            apiCallsTotal,
		apiRetriesTotal:          apiRetriesTotal,
		cleanupDeletedTotal:      cleanupDeletedTotal,
		broadcastsScheduled:      broadcastsScheduled,
		broadcastsLive:           broadcastsLive,
	}
}

// IncBroadcastsScheduled increments the scheduled broadcasts counter.
func (m *Metrics) IncBroadcastsScheduled() {
	m.broadcastsScheduledTotal.Inc()
}

// IncBroadcastsStarted increments the started broadcasts counter.
func (m *Metrics) IncBroadcastsStarted() {
	m.broadcastsStartedTotal.Inc()
}

// IncBroadcastsEnded increments the ended broadcasts counter.
func (m *Metrics) IncBroadcastsEnded() {
	m.broadcastsEndedTotal.Inc()
}

// IncAPICalls increments the API operations counter.
func (m *Metrics) IncAPICalls() {
	m.apiCallsTotal.Inc()
}

// IncAPIRetries increments the retried attempts counter.
func (m *Metrics) IncAPIRetries() {
	m.apiRetriesTotal.Inc()
}

// AddCleanupDeleted adds to the deleted orphan broadcasts counter.
func (m *Metrics) AddCleanupDeleted(n int) {
	m.cleanupDeletedTotal.Add(float64(n))
}

// SetBroadcastsScheduled sets the scheduled broadcasts gauge.
func (m *Metrics) SetBroadcastsScheduled(n int) {
	m.broadcastsScheduled.Set(float64(n))
}

// SetBroadcastsLive sets the live broadcasts gauge.
func (m *Metrics) SetBroadcastsLive(n int) {
	m.broadcastsLive.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
