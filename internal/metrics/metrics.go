// Package metrics defines the connector's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExchangesTotal counts exchange operations by outcome.
	ExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_exchanges_total",
			Help: "Total number of exchange operations",
		},
		[]string{"operation", "status"},
	)

	// ExternalRequestDuration tracks calls into external services.
	ExternalRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "connector_external_request_duration_seconds",
			Help:    "External service call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	// IndexerInFlight tracks concurrent indexing calls. Bounded by the
	// throttle; the gauge exists to watch the bound hold.
	IndexerInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connector_indexer_inflight",
			Help: "Number of indexing calls currently in flight",
		},
	)

	// ErrorsTotal counts failures by component and error category.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "category"},
	)
)
