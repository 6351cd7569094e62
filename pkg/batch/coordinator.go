package batch

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jzx17/gobulk/pkg/retry"
	"github.com/jzx17/gobulk/pkg/types"
)

// Coordinator runs batches. It is safe to share between goroutines; every
// Run builds its own executor and result.
type Coordinator struct {
	logger       *zap.Logger
	clock        types.Clock
	jitter       retry.JitterFunc
	jitterSet    bool
	eventHandler retry.EventHandler
	metrics      *Metrics
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// NewCoordinator creates a coordinator with a no-op logger and the real clock
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		logger: zap.NewNop(),
		clock:  types.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogger sets the logger; nil keeps the no-op logger
func WithLogger(logger *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the clock used for timing, backoff and attempt timeouts
func WithClock(clock types.Clock) CoordinatorOption {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithJitter overrides the backoff jitter; nil disables jitter
func WithJitter(jitter retry.JitterFunc) CoordinatorOption {
	return func(c *Coordinator) {
		c.jitter = jitter
		c.jitterSet = true
	}
}

// WithEventHandler replaces the default zap retry event handler
func WithEventHandler(handler retry.EventHandler) CoordinatorOption {
	return func(c *Coordinator) {
		c.eventHandler = handler
	}
}

// WithMetrics records run, item and retry metrics
func WithMetrics(metrics *Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// Chunk splits items into consecutive slices of at most size elements
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// Run validates options, processes items chunk by chunk and aggregates the
// outcome. Item failures never surface as an error; only invalid options or
// an empty item list do. When ContinueOnError is false, processing stops
// after the first chunk containing a failure, so Results may be shorter
// than Total.
func Run[T, R any](c *Coordinator, ctx context.Context, items []T, op Operation[T, R], opts Options) (*Result[R], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, types.NewValidationError("items", "batch items array cannot be empty")
	}
	if op == nil {
		return nil, types.NewValidationError("operation", "cannot be nil")
	}

	batchID := uuid.NewString()
	logger := c.logger.With(zap.String("batch_id", batchID))
	executor := retry.NewExecutor(opts.Retry, c.executorOptions(logger)...)

	sched := &scheduler[T, R]{
		executor: executor,
		op:       op,
		options:  opts,
		logger:   logger,
		coord:    c,
	}

	workItems := make([]WorkItem[T], len(items))
	for i, item := range items {
		workItems[i] = WorkItem[T]{Index: i, Payload: item}
	}
	chunks := Chunk(workItems, opts.BatchSize)

	logger.Info("Starting batch",
		zap.Int("items", len(items)),
		zap.Int("chunks", len(chunks)),
		zap.Int("batch_size", opts.BatchSize),
		zap.Bool("parallel", opts.Parallel),
		zap.Bool("continue_on_error", opts.ContinueOnError))

	startTime := c.clock.Now()
	results := make([]ItemResult[R], 0, len(items))
	earlyExit := false

	for i, chunk := range chunks {
		chunkStart := c.clock.Now()
		chunkResults := sched.run(ctx, chunk)
		results = append(results, chunkResults...)

		failed := countFailed(chunkResults)
		c.metrics.observeChunk(c.clock.Since(chunkStart), len(chunkResults)-failed, failed)

		logger.Debug("Chunk processed",
			zap.Int("chunk", i),
			zap.Int("items", len(chunkResults)),
			zap.Int("failed", failed))

		if failed > 0 && !opts.ContinueOnError && i < len(chunks)-1 {
			earlyExit = true
			logger.Warn("Stopping batch after failed chunk",
				zap.Int("chunk", i),
				zap.Int("skipped", len(items)-len(results)))
			break
		}
	}

	endTime := c.clock.Now()
	result := aggregate(results, len(items))
	result.Duration = max(endTime.Sub(startTime), 0)
	result.DurationMs = result.Duration.Milliseconds()
	result.Metadata = Metadata{
		ID:              batchID,
		StartTime:       startTime,
		EndTime:         endTime,
		BatchSize:       opts.BatchSize,
		ContinueOnError: opts.ContinueOnError,
	}

	c.metrics.observeRun(earlyExit, executor.GetStats().TotalRetries)

	logger.Info("Batch finished",
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Bool("early_exit", earlyExit),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func (c *Coordinator) executorOptions(logger *zap.Logger) []retry.ExecutorOption {
	handler := c.eventHandler
	if handler == nil {
		handler = retry.NewZapEventHandler(logger)
	}

	opts := []retry.ExecutorOption{
		retry.WithClock(c.clock),
		retry.WithEventHandler(handler),
	}
	if c.jitterSet {
		opts = append(opts, retry.WithJitter(c.jitter))
	}
	return opts
}

func aggregate[R any](results []ItemResult[R], total int) *Result[R] {
	result := &Result[R]{
		Total:   total,
		Results: results,
		Errors:  []IndexedError{},
	}
	for _, r := range results {
		if r.Success {
			result.Successful++
			continue
		}
		result.Failed++
		if r.Error != nil {
			result.Errors = append(result.Errors, IndexedError{Index: r.Index, ErrorDetail: *r.Error})
		}
	}
	return result
}

func countFailed[R any](results []ItemResult[R]) int {
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	return failed
}
