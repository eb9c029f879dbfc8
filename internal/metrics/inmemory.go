package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UserCacheHits                 uint64
	UserCacheMisses               uint64
	UserCacheInvalidations        uint64
	UserCacheInvalidationErrors   uint64
	ContactsCreated               uint64
	ContactsUpdated               uint64
	ContactsDeleted               uint64
	ContactListCount              uint64
	ContactListTotalNs            int64
	BirthdayWindowCount           uint64
	BirthdayWindowTotalNs         int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	userCacheHits               uint64
	userCacheMisses             uint64
	userCacheInvalidations      uint64
	userCacheInvalidationErrors uint64
	contactsCreated             uint64
	contactsUpdated             uint64
	contactsDeleted             uint64
	contactListCount            uint64
	contactListTotalNs          int64
	birthdayWindowCount         uint64
	birthdayWindowTotalNs       int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UserCacheHits:               atomic.LoadUint64(&m.userCacheHits),
		UserCacheMisses:             atomic.LoadUint64(&m.userCacheMisses),
		UserCacheInvalidations:      atomic.LoadUint64(&m.userCacheInvalidations),
		UserCacheInvalidationErrors: atomic.LoadUint64(&m.userCacheInvalidationErrors),
		ContactsCreated:             atomic.LoadUint64(&m.contactsCreated),
		ContactsUpdated:             atomic.LoadUint64(&m.contactsUpdated),
		ContactsDeleted:             atomic.LoadUint64(&m.contactsDeleted),
		ContactListCount:            atomic.LoadUint64(&m.contactListCount),
		ContactListTotalNs:          atomic.LoadInt64(&m.contactListTotalNs),
		BirthdayWindowCount:         atomic.LoadUint64(&m.birthdayWindowCount),
		BirthdayWindowTotalNs:       atomic.LoadInt64(&m.birthdayWindowTotalNs),
	}
}

// IncUserCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncUserCacheHit() {
	atomic.AddUint64(&m.userCacheHits, 1)
}

// IncUserCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncUserCacheMiss() {
	atomic.AddUint64(&m.userCacheMisses, 1)
}

// IncUserCacheInvalidation increments the invalidation counter.
func (m *InMemoryRecorder) IncUserCacheInvalidation() {
	atomic.AddUint64(&m.userCacheInvalidations, 1)
}

// IncUserCacheInvalidationError increments the failed-invalidation counter.
func (m *InMemoryRecorder) IncUserCacheInvalidationError() {
	atomic.AddUint64(&m.userCacheInvalidationErrors, 1)
}

// IncContactCreated increments the created-contacts counter.
func (m *InMemoryRecorder) IncContactCreated() {
	atomic.AddUint64(&m.contactsCreated, 1)
}

// IncContactUpdated increments the updated-contacts counter.
func (m *InMemoryRecorder) IncContactUpdated() {
	atomic.AddUint64(&m.contactsUpdated, 1)
}

// IncContactDeleted increments the deleted-contacts counter.
func (m *InMemoryRecorder) IncContactDeleted() {
	atomic.AddUint64(&m.contactsDeleted, 1)
}

// ObserveContactListDuration records a contact list query duration.
func (m *InMemoryRecorder) ObserveContactListDuration(duration time.Duration) {
	atomic.AddUint64(&m.contactListCount, 1)
	atomic.AddInt64(&m.contactListTotalNs, duration.Nanoseconds())
}

// ObserveBirthdayWindowDuration records a birthday window query duration.
func (m *InMemoryRecorder) ObserveBirthdayWindowDuration(duration time.Duration) {
	atomic.AddUint64(&m.birthdayWindowCount, 1)
	atomic.AddInt64(&m.birthdayWindowTotalNs, duration.Nanoseconds())
}
