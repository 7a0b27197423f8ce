package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// Metrics implements fortune.Metrics using Prometheus.
type Metrics struct {
	decisionsTotal     *prometheus.CounterVec
	decisionDuration   *prometheus.HistogramVec
	storageOpsDuration *prometheus.HistogramVec
	storageOpsErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Prometheus metrics implementation.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		decisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of entitlement decisions.",
		}, []string{"feature", "outcome"}),

		decisionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decision_duration_seconds",
			Help:      "Latency of decide-and-persist sequences.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feature"}),

		storageOpsDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Latency of storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		storageOpsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operation_errors_total",
			Help:      "Total number of storage operation errors.",
		}, []string{"operation"}),
	}
}

// RecordDecision implements fortune.Metrics.
func (m *Metrics) RecordDecision(feature fortune.Feature, kind fortune.DecisionKind) {
	m.decisionsTotal.WithLabelValues(string(feature), string(kind)).Inc()
}

// RecordDecisionDuration implements fortune.Metrics.
func (m *Metrics) RecordDecisionDuration(feature fortune.Feature, d time.Duration) {
	m.decisionDuration.WithLabelValues(string(feature)).Observe(d.Seconds())
}

// RecordStorageOperation implements fortune.Metrics.
func (m *Metrics) RecordStorageOperation(op string, d time.Duration, err error) {
	m.storageOpsDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.storageOpsErrors.WithLabelValues(op).Inc()
	}
}
