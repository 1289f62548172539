package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic nanosecond time source. Readings are only meaningful
// relative to other readings from the same Clock.
type Clock interface {
	Now() uint64
}

type monotonic struct {
	epoch time.Time
}

// Monotonic returns a Clock backed by the runtime's monotonic clock reading.
func Monotonic() Clock {
	return &monotonic{epoch: time.Now()}
}

func (m *monotonic) Now() uint64 {
	return uint64(time.Since(m.epoch))
}

// Fake is a manually driven Clock for tests. Every call to Now advances the
// clock by Step before reading it, which models the cost of the timer call.
type Fake struct {
	mu   sync.Mutex
	now  uint64
	Step time.Duration
}

// NewFake returns a Fake clock starting at start nanoseconds.
func NewFake(start uint64, step time.Duration) *Fake {
	return &Fake{now: start, Step: step}
}

// Now implements Clock.
func (f *Fake) Now() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += uint64(f.Step)
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += uint64(d)
}

// Peek returns the current reading without applying Step.
func (f *Fake) Peek() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}
