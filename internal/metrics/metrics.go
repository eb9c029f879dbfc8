// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User cache metrics
	IncUserCacheHit()
	IncUserCacheMiss()
	IncUserCacheInvalidation()
	IncUserCacheInvalidationError()

	// Contact management metrics
	IncContactCreated()
	IncContactUpdated()
	IncContactDeleted()

	// Contact query metrics
	ObserveContactListDuration(duration time.Duration)
	ObserveBirthdayWindowDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
