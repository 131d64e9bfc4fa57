package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DevicesIngested counts devices newly stored by scan ingestion
	DevicesIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "iotsec",
			Name:      "devices_ingested_total",
			Help:      "Total number of newly stored devices",
		},
	)

	// ScanRecordsDropped counts raw scan records rejected during normalization
	ScanRecordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iotsec",
			Name:      "scan_records_dropped_total",
			Help:      "Total number of raw scan records dropped during ingestion",
		},
		[]string{"reason"},
	)

	// VulnerabilityLookups counts vulnerability source queries by outcome
	VulnerabilityLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iotsec",
			Name:      "vulnerability_lookups_total",
			Help:      "Total number of vulnerability source queries",
		},
		[]string{"source", "result"},
	)

	// CorrelatedDevices counts device pipelines by outcome
	CorrelatedDevices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iotsec",
			Name:      "correlation_devices_total",
			Help:      "Total number of devices processed by correlation",
		},
		[]string{"outcome"},
	)

	// CorrelationDuration observes the wall time of a correlation run
	CorrelationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "iotsec",
			Name:      "correlation_duration_seconds",
			Help:      "Duration of correlation runs",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// AlertsCreated counts stored security alerts
	AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iotsec",
			Name:      "alerts_created_total",
			Help:      "Total number of security alerts stored",
		},
		[]string{"severity"},
	)

	// AlertPersistErrors counts alerts that could not be stored
	AlertPersistErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "iotsec",
			Name:      "alert_persist_errors_total",
			Help:      "Total number of alert drafts that failed to persist",
		},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(DevicesIngested)
		prometheus.DefaultRegisterer.Register(ScanRecordsDropped)
		prometheus.DefaultRegisterer.Register(VulnerabilityLookups)
		prometheus.DefaultRegisterer.Register(CorrelatedDevices)
		prometheus.DefaultRegisterer.Register(CorrelationDuration)
		prometheus.DefaultRegisterer.Register(AlertsCreated)
		prometheus.DefaultRegisterer.Register(AlertPersistErrors)
	})
}
