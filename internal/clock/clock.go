package clock

import (
	"sync"
	"time"
)

// Clock is the only source of "now" for the ledger and the reminders
type Clock interface {
	Now() time.Time
}

// System reads the host clock in local time
type System struct{}

// Now returns the current local time
func (System) Now() time.Time {
	return time.Now()
}

// Mock is a settable clock for tests and dry runs
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock creates a mock clock frozen at t
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

// Now returns the frozen time
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
