package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncFormCreated is a no-op.
func (n *NoopRecorder) IncFormCreated() {}

// IncFormUpdated is a no-op.
func (n *NoopRecorder) IncFormUpdated() {}

// IncFormDeleted is a no-op.
func (n *NoopRecorder) IncFormDeleted() {}

// ObserveStoreDuration is a no-op.
func (n *NoopRecorder) ObserveStoreDuration(op string, duration time.Duration) {}

// IncStoreError is a no-op.
func (n *NoopRecorder) IncStoreError(kind string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
