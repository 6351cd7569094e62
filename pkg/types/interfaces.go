// Package types defines the core interfaces shared across gobulk packages
package types

import (
	"context"
)

// Task defines a unit of work accepted by a worker pool
type Task interface {
	// Execute executes the task
	Execute(ctx context.Context) error

	// ID returns the task ID (for tracking and logging)
	ID() string
}

// WorkerPoolStats defines basic statistics for worker pools
type WorkerPoolStats struct {
	// PoolSize is the size of the pool
	PoolSize int

	// ActiveWorkers is the number of workers currently executing a task
	ActiveWorkers int

	// PeakActive is the highest number of simultaneously executing tasks
	PeakActive int

	// Processed is the number of tasks that completed without error
	Processed int64

	// Failed is the number of tasks that returned an error or panicked
	Failed int64
}

// ErrorHandler is invoked with task errors observed by a worker
type ErrorHandler func(taskID string, err error)
