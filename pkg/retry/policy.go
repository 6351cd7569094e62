// Package retry provides retry mechanism strategies and implementations
package retry

import (
	"time"

	"github.com/jzx17/gobulk/pkg/types"
)

// Options configures the retry behaviour for one executor
type Options struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// InitialDelay is the base delay before the first retry
	InitialDelay time.Duration

	// MaxDelay caps the exponential delay before jitter is added
	MaxDelay time.Duration

	// BackoffMultiplier grows the delay on every retry
	BackoffMultiplier float64

	// RetryableCodes lists the status codes that mark a failure as transient
	RetryableCodes []int
}

// DefaultRetryableCodes returns the rate-limit and server error codes retried by default
func DefaultRetryableCodes() []int {
	return []int{429, 500, 502, 503, 504}
}

// DefaultOptions returns a fresh copy of the default retry options
func DefaultOptions() Options {
	return Options{
		MaxRetries:        3,
		InitialDelay:      1000 * time.Millisecond,
		MaxDelay:          10000 * time.Millisecond,
		BackoffMultiplier: 2,
		RetryableCodes:    DefaultRetryableCodes(),
	}
}

// Validate checks the options for values that cannot produce a sane schedule
func (o Options) Validate() error {
	if o.MaxRetries < 0 {
		return types.NewValidationError("maxRetries", "cannot be negative")
	}
	if o.InitialDelay < 0 {
		return types.NewValidationError("initialDelay", "cannot be negative")
	}
	if o.MaxDelay < 0 {
		return types.NewValidationError("maxDelay", "cannot be negative")
	}
	if o.BackoffMultiplier < 1 {
		return types.NewValidationError("backoffMultiplier", "must be at least 1")
	}
	return nil
}

// IsRetryableCode reports whether code is in the retryable set
func (o Options) IsRetryableCode(code int) bool {
	return containsCode(o.RetryableCodes, code)
}

// Policy decides whether and when a failed attempt is retried
type Policy struct {
	options Options
	backoff *ExponentialBackoff
}

// NewPolicy creates a status-code driven exponential backoff policy
func NewPolicy(options Options, jitter JitterFunc) *Policy {
	codes := make([]int, len(options.RetryableCodes))
	copy(codes, options.RetryableCodes)
	options.RetryableCodes = codes

	return &Policy{
		options: options,
		backoff: NewExponentialBackoff(options.InitialDelay,
			WithBackoffMultiplier(options.BackoffMultiplier),
			WithBackoffMaxDelay(options.MaxDelay),
			WithBackoffJitter(jitter)),
	}
}

// Classify classifies err against the policy's retryable codes
func (p *Policy) Classify(err error) Classification {
	return Classify(err, p.options.RetryableCodes)
}

// ShouldRetry determines whether to retry after the given 0-based attempt failed
func (p *Policy) ShouldRetry(class Classification, attempt int) bool {
	if attempt >= p.options.MaxRetries {
		return false
	}
	return class.Retryable()
}

// NextDelay returns the delay for the next retry
func (p *Policy) NextDelay(attempt int) time.Duration {
	return p.backoff.NextDelay(attempt)
}

// BaseDelay returns the jitter-free delay for the given attempt
func (p *Policy) BaseDelay(attempt int) time.Duration {
	return p.backoff.BaseDelay(attempt)
}

// MaxAttempts returns the total number of attempts including the first one
func (p *Policy) MaxAttempts() int {
	return p.options.MaxRetries + 1
}

// Options returns a copy of the policy options
func (p *Policy) Options() Options {
	return p.options
}
