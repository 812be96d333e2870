// Package telemetry holds the Prometheus metrics exported on /metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compoundhub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compoundhub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	bulkOccupants = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compoundhub_bulk_occupants_total",
		Help: "Per-occupant outcomes of bulk actions",
	}, []string{"action", "result"})

	bulkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compoundhub_bulk_duration_seconds",
		Help:    "Duration of bulk actions from resolution to final join",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compoundhub_notifications_total",
		Help: "Notification dispatch attempts by transport and result",
	}, []string{"transport", "result"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "compoundhub_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	unitRequestsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compoundhub_unit_requests_resolved_total",
		Help: "Unit requests resolved by outcome",
	}, []string{"outcome"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compoundhub_fetch_failures_total",
		Help: "Collection reads that failed and degraded to empty",
	}, []string{"collection"})

	deviceResetEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compoundhub_device_reset_events_total",
		Help: "Device-reset change batches observed by the watcher",
	})

	pendingDeviceResets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "compoundhub_device_resets_pending",
		Help: "Pending device-reset requests across projects",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records an HTTP request.
func ObserveHTTPRequest(method, route, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveBulk records the outcome of one bulk action.
func ObserveBulk(action string, succeeded, failed int, d time.Duration) {
	bulkOccupants.WithLabelValues(action, "success").Add(float64(succeeded))
	bulkOccupants.WithLabelValues(action, "failure").Add(float64(failed))
	bulkDuration.WithLabelValues(action).Observe(d.Seconds())
}

// ObserveNotification records one dispatch attempt.
func ObserveNotification(transport string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	notificationsSent.WithLabelValues(transport, result).Inc()
}

// SetBreakerState publishes a breaker's state (0 closed, 1 half-open, 2 open).
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveUnitRequest counts a resolved unit request.
func ObserveUnitRequest(outcome string) {
	unitRequestsResolved.WithLabelValues(outcome).Inc()
}

// ObserveFetchFailure counts a degraded collection read.
func ObserveFetchFailure(collection string) {
	fetchFailures.WithLabelValues(collection).Inc()
}

// ObserveDeviceResets records one watcher batch and the current pending count.
func ObserveDeviceResets(pending int64) {
	deviceResetEvents.Inc()
	if pending < 0 {
		pending = 0
	}
	pendingDeviceResets.Set(float64(pending))
}
