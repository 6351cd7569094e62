package testutils

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/jzx17/gobulk/pkg/types"
)

// NewMockClock creates a mock clock for testing
func NewMockClock(t testing.TB) *quartz.Mock {
	return quartz.NewMock(t)
}

// RecordingClock runs delays in virtual time. Every After call is recorded,
// advances the underlying quartz mock by the requested duration and fires
// immediately, so backoff schedules can be asserted exactly without sleeping.
// Timers created through NewTimer only fire when the mock is advanced past
// them, so attempt timeouts never trigger on their own.
type RecordingClock struct {
	mock *quartz.Mock

	mu     sync.Mutex
	delays []time.Duration
}

// NewRecordingClock creates a new RecordingClock
func NewRecordingClock(t testing.TB) *RecordingClock {
	return &RecordingClock{mock: quartz.NewMock(t)}
}

// Mock returns the underlying quartz mock
func (c *RecordingClock) Mock() *quartz.Mock {
	return c.mock
}

// Now returns the current virtual time
func (c *RecordingClock) Now() time.Time {
	return c.mock.Now()
}

// Since returns the virtual time elapsed since t
func (c *RecordingClock) Since(t time.Time) time.Duration {
	return c.mock.Since(t)
}

// After records d, advances virtual time and returns an already fired channel
func (c *RecordingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.mock.Advance(d)
	now := c.mock.Now()
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// NewTimer creates a timer on the quartz mock
func (c *RecordingClock) NewTimer(d time.Duration) types.Timer {
	return &TimerWrapper{timer: c.mock.NewTimer(d)}
}

// Delays returns a copy of every duration passed to After, in call order
func (c *RecordingClock) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	delays := make([]time.Duration, len(c.delays))
	copy(delays, c.delays)
	return delays
}

// TotalDelay returns the sum of every recorded delay
func (c *RecordingClock) TotalDelay() time.Duration {
	var total time.Duration
	for _, d := range c.Delays() {
		total += d
	}
	return total
}

// TimerWrapper wraps quartz timer
type TimerWrapper struct {
	timer *quartz.Timer
}

func (t *TimerWrapper) C() <-chan time.Time {
	return t.timer.C
}

func (t *TimerWrapper) Stop() bool {
	return t.timer.Stop()
}
