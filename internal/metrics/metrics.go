// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Form management metrics
	IncFormCreated()
	IncFormUpdated()
	IncFormDeleted()

	// Store metrics
	ObserveStoreDuration(op string, duration time.Duration)
	IncStoreError(kind string)

	// Edge metrics
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
