// Package metrics holds the prometheus collectors shared by the API and the
// workers. All collectors register on the default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	joinTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "join_tasks_total",
			Help: "Join tasks finished, by outcome",
		},
		[]string{"outcome"}, // succeeded, failed
	)

	joinTaskDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "join_task_duration_seconds",
			Help:    "Wall time of a join task from start to terminal state",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~163s
		},
		[]string{"outcome"},
	)

	stageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "join_stage_duration_seconds",
			Help:    "Duration of each join pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"stage"}, // load, fetch, join, persist
	)

	remoteFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "join_remote_fetches_total",
			Help: "Remote JSON fetches, by result",
		},
		[]string{"result"}, // ok, transport_error, bad_status, bad_body
	)

	recordsEmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "join_records_emitted_total",
			Help: "Records produced by the join engine",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by method, route and status code",
		},
		[]string{"method", "route", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// TaskFinished records a terminal join task.
func TaskFinished(outcome string, d time.Duration) {
	joinTasksTotal.WithLabelValues(outcome).Inc()
	joinTaskDurationSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// StageFinished records the duration of one pipeline stage.
func StageFinished(stage string, d time.Duration) {
	stageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// RemoteFetch counts a remote fetch attempt by result.
func RemoteFetch(result string) {
	remoteFetchesTotal.WithLabelValues(result).Inc()
}

// RecordsEmitted adds n joined records.
func RecordsEmitted(n int) {
	recordsEmittedTotal.Add(float64(n))
}

// HTTPRequest records a served request under its route pattern. Its
// signature matches router.Observer.
func HTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}
