package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserCacheHit is a no-op.
func (n *NoopRecorder) IncUserCacheHit() {}

// IncUserCacheMiss is a no-op.
func (n *NoopRecorder) IncUserCacheMiss() {}

// IncUserCacheInvalidation is a no-op.
func (n *NoopRecorder) IncUserCacheInvalidation() {}

// IncUserCacheInvalidationError is a no-op.
func (n *NoopRecorder) IncUserCacheInvalidationError() {}

// IncContactCreated is a no-op.
func (n *NoopRecorder) IncContactCreated() {}

// IncContactUpdated is a no-op.
func (n *NoopRecorder) IncContactUpdated() {}

// IncContactDeleted is a no-op.
func (n *NoopRecorder) IncContactDeleted() {}

// ObserveContactListDuration is a no-op.
func (n *NoopRecorder) ObserveContactListDuration(duration time.Duration) {}

// ObserveBirthdayWindowDuration is a no-op.
func (n *NoopRecorder) ObserveBirthdayWindowDuration(duration time.Duration) {}
