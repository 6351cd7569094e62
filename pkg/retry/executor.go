// Package retry provides retry executor implementation
package retry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jzx17/gobulk/pkg/types"
)

// DefaultAttemptTimeout is used by ExecuteWithRetryAndTimeout when no timeout is given
const DefaultAttemptTimeout = 30 * time.Second

// Executor implements retry execution logic
type Executor struct {
	policy       *Policy
	jitter       JitterFunc
	eventHandler EventHandler
	stats        RetryStats
	clock        types.Clock
}

// ExecuteFunc is the function type to retry
type ExecuteFunc[T any] func(ctx context.Context) (T, error)

// RetryStats contains retry statistics
type RetryStats struct {
	TotalAttempts   int64         // total attempt count
	TotalRetries    int64         // attempts made after a retryable failure
	TotalSuccesses  int64         // operations that eventually succeeded
	TotalFailures   int64         // operations that terminally failed
	AverageAttempts float64       // average attempts per operation
	LastRetryTime   time.Time     // last retry time
	TotalRetryDelay time.Duration // total retry delay time
	mu              sync.RWMutex
}

// EventHandler handles retry events
type EventHandler interface {
	OnRetryScheduled(ctx context.Context, attempt int, err error, delay time.Duration)
	OnRetrySuccess(ctx context.Context, attempts int, duration time.Duration)
	OnPermanentFailure(ctx context.Context, attempts int, class Classification, err error)
	OnMaxAttemptsReached(ctx context.Context, attempts int, err error)
}

// NewExecutor creates a retry executor for the given options
func NewExecutor(options Options, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		jitter: UniformJitter(DefaultJitterMax),
		clock:  types.NewRealClock(),
	}

	for _, opt := range opts {
		opt(executor)
	}

	executor.policy = NewPolicy(options, executor.jitter)
	return executor
}

// Policy returns the executor's retry policy
func (e *Executor) Policy() *Policy {
	return e.policy
}

// Clock returns the clock used for delays and timeouts
func (e *Executor) Clock() types.Clock {
	return e.clock
}

// Execute runs fn, retrying retryable failures with backoff. When attempts
// are exhausted the last error is returned unchanged.
func Execute[T any](e *Executor, ctx context.Context, fn ExecuteFunc[T]) (T, error) {
	var zero T
	start := e.clock.Now()

	for attempt := 0; ; attempt++ {
		// check if context is cancelled
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		e.updateStats(func(stats *RetryStats) {
			stats.TotalAttempts++
			if attempt > 0 {
				stats.TotalRetries++
			}
		})

		result, err := callSafely(ctx, fn)
		if err == nil {
			e.updateStats(func(stats *RetryStats) {
				stats.TotalSuccesses++
				stats.updateAverageAttempts()
			})

			if e.eventHandler != nil && attempt > 0 {
				e.eventHandler.OnRetrySuccess(ctx, attempt+1, e.clock.Since(start))
			}

			return result, nil
		}

		class := e.policy.Classify(err)
		if !e.policy.ShouldRetry(class, attempt) {
			e.updateStats(func(stats *RetryStats) {
				stats.TotalFailures++
				stats.updateAverageAttempts()
			})

			if e.eventHandler != nil {
				if class.Retryable() {
					e.eventHandler.OnMaxAttemptsReached(ctx, attempt+1, err)
				} else {
					e.eventHandler.OnPermanentFailure(ctx, attempt+1, class, err)
				}
			}

			return zero, err
		}

		delay := e.policy.NextDelay(attempt)

		e.updateStats(func(stats *RetryStats) {
			stats.LastRetryTime = e.clock.Now()
			stats.TotalRetryDelay += delay
		})

		if e.eventHandler != nil {
			e.eventHandler.OnRetryScheduled(ctx, attempt+1, err, delay)
		}

		if err := types.SleepContext(ctx, e.clock, delay); err != nil {
			return zero, err
		}
	}
}

// ExecuteWithTimeout races fn against a timer. If the timer fires first a
// *TimeoutError carrying message is returned and fn's context is cancelled.
func ExecuteWithTimeout[T any](e *Executor, ctx context.Context, fn ExecuteFunc[T], timeout time.Duration, message string) (T, error) {
	var zero T
	if timeout <= 0 {
		return callSafely(ctx, fn)
	}
	if message == "" {
		message = DefaultTimeoutMessage
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}

	// buffered so the goroutine can always finish after a timeout
	done := make(chan outcome, 1)
	go func() {
		value, err := callSafely(attemptCtx, fn)
		done <- outcome{value: value, err: err}
	}()

	timer := e.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C():
		return zero, &TimeoutError{Message: message, Timeout: timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// ExecuteWithRetryAndTimeout applies a fresh timeout window to every attempt
func ExecuteWithRetryAndTimeout[T any](e *Executor, ctx context.Context, fn ExecuteFunc[T], timeout time.Duration) (T, error) {
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	return Execute(e, ctx, func(ctx context.Context) (T, error) {
		return ExecuteWithTimeout(e, ctx, fn, timeout, DefaultTimeoutMessage)
	})
}

// callSafely converts a panic in fn into a *PanicError
func callSafely[T any](ctx context.Context, fn ExecuteFunc[T]) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx)
}

// GetStats gets retry statistics
func (e *Executor) GetStats() RetryStats {
	e.stats.mu.RLock()
	defer e.stats.mu.RUnlock()
	return RetryStats{
		TotalAttempts:   e.stats.TotalAttempts,
		TotalRetries:    e.stats.TotalRetries,
		TotalSuccesses:  e.stats.TotalSuccesses,
		TotalFailures:   e.stats.TotalFailures,
		AverageAttempts: e.stats.AverageAttempts,
		LastRetryTime:   e.stats.LastRetryTime,
		TotalRetryDelay: e.stats.TotalRetryDelay,
	}
}

// ResetStats resets statistics
func (e *Executor) ResetStats() {
	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()

	e.stats.TotalAttempts = 0
	e.stats.TotalRetries = 0
	e.stats.TotalSuccesses = 0
	e.stats.TotalFailures = 0
	e.stats.AverageAttempts = 0
	e.stats.LastRetryTime = time.Time{}
	e.stats.TotalRetryDelay = 0
}

// updateStats updates statistics (thread-safe)
func (e *Executor) updateStats(fn func(*RetryStats)) {
	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()
	fn(&e.stats)
}

func (s *RetryStats) updateAverageAttempts() {
	totalOperations := s.TotalSuccesses + s.TotalFailures
	if totalOperations > 0 {
		s.AverageAttempts = float64(s.TotalAttempts) / float64(totalOperations)
	}
}

// ExecutorOption is a configuration option for retry executor
type ExecutorOption func(*Executor)

// WithEventHandler sets the event handler
func WithEventHandler(handler EventHandler) ExecutorOption {
	return func(e *Executor) {
		e.eventHandler = handler
	}
}

// WithClock sets the clock for time operations
func WithClock(clock types.Clock) ExecutorOption {
	return func(e *Executor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithJitter sets the jitter applied to every delay; nil disables jitter
func WithJitter(jitter JitterFunc) ExecutorOption {
	return func(e *Executor) {
		e.jitter = jitter
	}
}

// ZapEventHandler logs retry events with zap
type ZapEventHandler struct {
	logger *zap.Logger
}

// NewZapEventHandler creates an event handler; a nil logger discards events
func NewZapEventHandler(logger *zap.Logger) *ZapEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapEventHandler{logger: logger}
}

// OnRetryScheduled handles retry scheduling events
func (h *ZapEventHandler) OnRetryScheduled(ctx context.Context, attempt int, err error, delay time.Duration) {
	h.logger.Debug("Retrying after transient failure",
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
		zap.Error(err))
}

// OnRetrySuccess handles retry success events
func (h *ZapEventHandler) OnRetrySuccess(ctx context.Context, attempts int, duration time.Duration) {
	h.logger.Debug("Retry succeeded",
		zap.Int("attempts", attempts),
		zap.Duration("duration", duration))
}

// OnPermanentFailure handles non-retryable failures
func (h *ZapEventHandler) OnPermanentFailure(ctx context.Context, attempts int, class Classification, err error) {
	fields := []zap.Field{
		zap.Int("attempts", attempts),
		zap.Stringer("class", class.Class),
		zap.Error(err),
	}
	if class.HasCode {
		fields = append(fields, zap.Int("code", class.Code))
	}
	h.logger.Debug("Operation failed without retry", fields...)
}

// OnMaxAttemptsReached handles max attempts reached events
func (h *ZapEventHandler) OnMaxAttemptsReached(ctx context.Context, attempts int, err error) {
	h.logger.Warn("Max retry attempts reached",
		zap.Int("attempts", attempts),
		zap.Error(err))
}
