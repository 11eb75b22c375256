package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchesTotal       *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	RowsSkippedTotal    prometheus.Counter
	RecordsReturned     prometheus.Histogram
	CircuitState        prometheus.Gauge
}

// New registers the collectors with reg. Use prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		SearchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_searches_total",
				Help: "Total number of catalog searches.",
			},
			[]string{"outcome"}, // success, empty, timeout, status, circuit_open, fetch, extract
		),
		FetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_fetch_duration_seconds",
				Help:    "Duration of upstream results page fetches.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		RowsSkippedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_rows_skipped_total",
				Help: "Result rows skipped because expected markup was missing.",
			},
		),
		RecordsReturned: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_records_returned",
				Help:    "Number of records returned per search.",
				Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
			},
		),
		CircuitState: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_circuit_state",
				Help: "Upstream circuit breaker state (0 closed, 1 half-open, 2 open).",
			},
		),
	}
}
