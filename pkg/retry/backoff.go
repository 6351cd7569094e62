// Package retry provides backoff algorithm implementations
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// DefaultJitterMax is the upper bound of the jitter added to every backoff delay
const DefaultJitterMax = time.Second

// BackoffStrategy defines the backoff strategy interface
type BackoffStrategy interface {
	// NextDelay calculates the delay before retrying after the given 0-based attempt
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements capped exponential backoff with additive jitter
type ExponentialBackoff struct {
	initialDelay time.Duration
	multiplier   float64
	maxDelay     time.Duration
	jitter       JitterFunc
}

// NewExponentialBackoff creates an exponential backoff strategy
func NewExponentialBackoff(initialDelay time.Duration, opts ...BackoffStrategyOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: initialDelay,
		multiplier:   2.0,
		maxDelay:     10 * time.Second,
		jitter:       UniformJitter(DefaultJitterMax),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// BaseDelay returns min(initialDelay * multiplier^attempt, maxDelay) without jitter
func (b *ExponentialBackoff) BaseDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))

	// limit maximum delay before converting, large powers overflow int64
	if delay > float64(b.maxDelay) || math.IsInf(delay, 0) || math.IsNaN(delay) {
		return b.maxDelay
	}

	return time.Duration(delay)
}

// NextDelay calculates the delay for the next retry
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := b.BaseDelay(attempt)
	if b.jitter != nil {
		delay = b.jitter(delay)
	}
	return delay
}

// JitterFunc jitter function type
type JitterFunc func(time.Duration) time.Duration

// UniformJitter adds a uniformly random amount in [0, max) to the delay
func UniformJitter(max time.Duration) JitterFunc {
	return func(delay time.Duration) time.Duration {
		if max <= 0 {
			return delay
		}
		return delay + rand.N(max)
	}
}

// NoJitter returns the delay unchanged
func NoJitter(delay time.Duration) time.Duration {
	return delay
}

// FullJitter full jitter function - random within [0, delay] range
func FullJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return rand.N(delay + 1)
}

// BackoffStrategyOption backoff strategy configuration option
type BackoffStrategyOption func(*ExponentialBackoff)

// WithBackoffMultiplier sets backoff multiplier
func WithBackoffMultiplier(multiplier float64) BackoffStrategyOption {
	return func(b *ExponentialBackoff) {
		b.multiplier = multiplier
	}
}

// WithBackoffMaxDelay sets maximum delay time
func WithBackoffMaxDelay(maxDelay time.Duration) BackoffStrategyOption {
	return func(b *ExponentialBackoff) {
		b.maxDelay = maxDelay
	}
}

// WithBackoffJitter sets jitter function; nil disables jitter
func WithBackoffJitter(jitter JitterFunc) BackoffStrategyOption {
	return func(b *ExponentialBackoff) {
		b.jitter = jitter
	}
}
