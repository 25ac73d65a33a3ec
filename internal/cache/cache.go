// Package cache provides a small TTL cache for single values, used for
// things like API access tokens and the loaded customer mapping file.
package cache

import (
	"sync"
	"time"
)

// Entry holds a cached value and the time it was inserted.
type Entry[T any] struct {
	Value      T
	InsertedAt time.Time
}

// Expired reports whether the entry is older than ttl at the given time.
// A zero InsertedAt is always expired.
func (e Entry[T]) Expired(now time.Time, ttl time.Duration) bool {
	if e.InsertedAt.IsZero() {
		return true
	}
	return now.Sub(e.InsertedAt) >= ttl
}

// Value is a concurrency-safe single-value cache with a fixed TTL.
// Its lifecycle is explicit: construct one per client, no package state.
type Value[T any] struct {
	mu    sync.Mutex
	entry Entry[T]
	ttl   time.Duration
	now   func() time.Time
}

// NewValue creates an empty cache with the given TTL.
func NewValue[T any](ttl time.Duration) *Value[T] {
	return &Value[T]{ttl: ttl, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (v *Value[T]) WithClock(now func() time.Time) *Value[T] {
	v.now = now
	return v
}

// Get returns the cached value if present and fresh.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var zero T
	if v.entry.Expired(v.now(), v.ttl) {
		return zero, false
	}
	return v.entry.Value, true
}

// Set stores a value, stamping it with the current time.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entry = Entry[T]{Value: val, InsertedAt: v.now()}
}

// Invalidate drops the cached value.
func (v *Value[T]) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entry = Entry[T]{}
}
