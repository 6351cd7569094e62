package batch

import (
	"time"

	"github.com/jzx17/gobulk/pkg/retry"
	"github.com/jzx17/gobulk/pkg/types"
)

// Limits enforced by Options.Validate
const (
	MinBatchSize      = 1
	MaxBatchSize      = 100
	MinMaxConcurrency = 1
	MaxMaxConcurrency = 20
)

// Options controls how a batch is chunked, scheduled and retried
type Options struct {
	// ContinueOnError keeps processing later chunks after a chunk with failures
	ContinueOnError bool

	// BatchSize is the number of items per chunk
	BatchSize int

	// Parallel runs the items of a chunk concurrently
	Parallel bool

	// MaxConcurrency caps the in-flight operations of a parallel chunk
	MaxConcurrency int

	// Retry configures per-item retries
	Retry retry.Options

	// AttemptTimeout bounds every single attempt; 0 disables it
	AttemptTimeout time.Duration
}

// DefaultOptions returns a fresh copy of the default batch options
func DefaultOptions() Options {
	return Options{
		ContinueOnError: true,
		BatchSize:       10,
		Parallel:        false,
		MaxConcurrency:  5,
		Retry:           retry.DefaultOptions(),
	}
}

// Validate checks the options before any item is processed
func (o Options) Validate() error {
	if o.BatchSize < MinBatchSize {
		return types.NewValidationError("batchSize", "must be a positive number")
	}
	if o.BatchSize > MaxBatchSize {
		return types.NewValidationError("batchSize", "cannot exceed %d", MaxBatchSize)
	}
	if o.MaxConcurrency < MinMaxConcurrency {
		return types.NewValidationError("maxConcurrency", "must be a positive number")
	}
	if o.MaxConcurrency > MaxMaxConcurrency {
		return types.NewValidationError("maxConcurrency", "cannot exceed %d", MaxMaxConcurrency)
	}
	if o.AttemptTimeout < 0 {
		return types.NewValidationError("attemptTimeout", "cannot be negative")
	}
	return o.Retry.Validate()
}
