package fortune

import "time"

// Metrics defines the interface for tracking entitlement decisions and
// storage performance.
type Metrics interface {
	// RecordDecision records one entitlement decision outcome.
	RecordDecision(feature Feature, kind DecisionKind)

	// RecordDecisionDuration records the latency of a full decide-and-persist
	// sequence.
	RecordDecisionDuration(feature Feature, duration time.Duration)

	// RecordStorageOperation records the duration and status of a storage
	// operation.
	RecordStorageOperation(operation string, duration time.Duration, err error)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordDecision(feature Feature, kind DecisionKind)                 {}
func (n *NoopMetrics) RecordDecisionDuration(feature Feature, duration time.Duration)    {}
func (n *NoopMetrics) RecordStorageOperation(op string, duration time.Duration, e error) {}
