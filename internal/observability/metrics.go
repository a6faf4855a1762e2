package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	editorRequestsTotal  *prometheus.CounterVec
	editorLatencySeconds *prometheus.HistogramVec
	editorErrorsTotal    *prometheus.CounterVec
	statisticRequests    *prometheus.CounterVec
	notificationsTotal   *prometheus.CounterVec
	streamClientsActive  prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors for the editor API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		editorRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editor_requests_total",
			Help: "Total number of editor API requests served.",
		}, []string{"method", "route", "status"})

		editorLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "editor_latency_seconds",
			Help:    "Latency distribution for editor API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		editorErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "editor_errors_total",
			Help: "Total number of error responses returned by editor endpoints.",
		}, []string{"method", "route", "status"})

		statisticRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "path_statistic_requests_total",
			Help: "Learning path statistic lookups by cache outcome.",
		}, []string{"outcome"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications published, by type.",
		}, []string{"type"})

		streamClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notification_stream_clients_active",
			Help: "Currently connected notification stream clients.",
		})

		prometheus.MustRegister(
			editorRequestsTotal,
			editorLatencySeconds,
			editorErrorsTotal,
			statisticRequests,
			notificationsTotal,
			streamClientsActive,
		)
	})
}

// EditorRequests exposes the counter for editor requests.
func EditorRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return editorRequestsTotal
}

// EditorLatency exposes the latency histogram for editor requests.
func EditorLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return editorLatencySeconds
}

// EditorErrors exposes the counter for editor error responses.
func EditorErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return editorErrorsTotal
}

// StatisticRequests exposes the statistic cache hit/miss counter.
func StatisticRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return statisticRequests
}

// NotificationsPublishedTotal exposes the published notification counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// StreamClientsActive exposes the connected stream client gauge.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return streamClientsActive
}
