package clock

import (
	"sync"
	"time"
)

// TimeProvider is the source of real time for a Clock.
type TimeProvider interface {
	Now() time.Time
}

// MonotonicProvider reads the system clock. time.Now carries a monotonic
// reading, so deltas are immune to wall clock jumps.
type MonotonicProvider struct{}

func (MonotonicProvider) Now() time.Time { return time.Now() }

// ManualProvider is a controllable time source for tests and replays.
type ManualProvider struct {
	mu  sync.RWMutex
	now time.Time
}

func NewManualProvider(start time.Time) *ManualProvider {
	return &ManualProvider{now: start}
}

func (m *ManualProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *ManualProvider) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *ManualProvider) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
