/*
Package worker provides a fixed-size worker pool used as a bounded
concurrency gate.

# Overview

FixedWorkerPool starts PoolSize worker goroutines that drain a shared task
channel. With QueueSize 0 the channel is unbuffered, so Submit blocks until a
worker is idle and at most PoolSize tasks are ever executing. Close closes the
channel and waits for every accepted task, which gives callers a single join
point.

# Usage

	pool, err := worker.NewFixedWorkerPool(&worker.FixedWorkerPoolConfig{
		PoolSize: 3,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if err := pool.Start(ctx); err != nil {
		return err
	}

	for i := range items {
		i := i
		task := worker.NewBasicTask(func(ctx context.Context) error {
			results[i] = process(ctx, items[i])
			return nil
		})
		if err := pool.Submit(ctx, task); err != nil {
			results[i] = cancelled(err)
		}
	}

	_ = pool.Close() // waits for in-flight tasks

# Error Handling

Task errors and panics never stop a worker. They are counted in Stats and
passed to the optional ErrorHandler.

# Thread Safety

Submit, Stats and GetWorkerStats are safe for concurrent use. Close must not
race with Submit.
*/
package worker
