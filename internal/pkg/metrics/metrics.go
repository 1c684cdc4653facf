// Package metrics holds the Prometheus collectors of the service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackit_scans_total",
			Help: "Scans handled, by result kind",
		},
		[]string{"result"},
	)

	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trackit_scan_duration_seconds",
			Help:    "Duration of scan requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackit_transitions_total",
			Help: "Lifecycle transitions published, by new status",
		},
		[]string{"status"},
	)

	OutboxPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackit_outbox_published_total",
			Help: "Outbox events handed to the transport",
		},
	)

	OutboxFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackit_outbox_failures_total",
			Help: "Outbox events that stayed pending after a failed attempt",
		},
	)

	AdvisorFitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackit_advisor_fits_total",
			Help: "Per-customer delivery model refits",
		},
	)
)

// Register registers every collector with the default registry.
func Register() {
	prometheus.MustRegister(ScansTotal)
	prometheus.MustRegister(ScanDuration)
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(OutboxPublishedTotal)
	prometheus.MustRegister(OutboxFailuresTotal)
	prometheus.MustRegister(AdvisorFitsTotal)
}
