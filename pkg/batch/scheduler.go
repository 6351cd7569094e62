package batch

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jzx17/gobulk/pkg/retry"
	"github.com/jzx17/gobulk/pkg/worker"
)

// scheduler runs the items of one chunk and returns their results ordered by index
type scheduler[T, R any] struct {
	executor *retry.Executor
	op       Operation[T, R]
	options  Options
	logger   *zap.Logger
	coord    *Coordinator
}

func (s *scheduler[T, R]) run(ctx context.Context, chunk []WorkItem[T]) []ItemResult[R] {
	if !s.options.Parallel || len(chunk) < 2 {
		return s.runSequential(ctx, chunk)
	}
	return s.runParallel(ctx, chunk)
}

// runSequential processes one item at a time in input order
func (s *scheduler[T, R]) runSequential(ctx context.Context, chunk []WorkItem[T]) []ItemResult[R] {
	results := make([]ItemResult[R], 0, len(chunk))
	for _, item := range chunk {
		results = append(results, ProcessItem(ctx, s.executor, item, s.op, s.options.AttemptTimeout))
	}
	return results
}

// runParallel feeds the chunk through a fixed worker pool sized to
// min(MaxConcurrency, len(chunk)). The pool has no queue, so Submit blocks
// until a worker is free and at most MaxConcurrency operations are in flight.
func (s *scheduler[T, R]) runParallel(ctx context.Context, chunk []WorkItem[T]) []ItemResult[R] {
	pool, err := worker.NewFixedWorkerPool(&worker.FixedWorkerPoolConfig{
		PoolSize:  min(s.options.MaxConcurrency, len(chunk)),
		QueueSize: 0,
		Clock:     s.coord.clock,
		Logger:    s.logger,
		ErrorHandler: func(taskID string, err error) {
			s.logger.Error("Item task failed outside the processor",
				zap.String("task_id", taskID), zap.Error(err))
		},
	})
	if err != nil {
		s.logger.Warn("Falling back to sequential processing", zap.Error(err))
		return s.runSequential(ctx, chunk)
	}

	// the pool's workers must outlive ctx so every submitted item is drained
	if err := pool.Start(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("Falling back to sequential processing", zap.Error(err))
		return s.runSequential(ctx, chunk)
	}

	results := make([]ItemResult[R], len(chunk))
	for i, item := range chunk {
		task := worker.NewBasicTaskWithID(fmt.Sprintf("item-%d", item.Index), func(context.Context) error {
			results[i] = ProcessItem(ctx, s.executor, item, s.op, s.options.AttemptTimeout)
			return nil
		})

		if err := pool.Submit(ctx, task); err != nil {
			results[i] = failedResult[R](item.Index, err)
		}
	}

	// Close waits for every accepted task
	if err := pool.Close(); err != nil {
		s.logger.Warn("Closing chunk worker pool", zap.Error(err))
	}

	slices.SortStableFunc(results, func(a, b ItemResult[R]) int {
		return a.Index - b.Index
	})
	return results
}
