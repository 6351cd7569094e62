package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jzx17/gobulk/pkg/types"
)

// FixedWorkerPoolConfig defines configuration for fixed worker pool
type FixedWorkerPoolConfig struct {
	// PoolSize is the number of workers, and so the cap on in-flight tasks
	PoolSize int

	// QueueSize is the task buffer size; 0 makes Submit block until a
	// worker is free, turning the pool into an admission gate
	QueueSize int

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler receives task errors (optional)
	ErrorHandler types.ErrorHandler

	// Logger (optional, defaults to a no-op logger)
	Logger *zap.Logger
}

// DefaultFixedWorkerPoolConfig returns default configuration
func DefaultFixedWorkerPoolConfig() *FixedWorkerPoolConfig {
	return &FixedWorkerPoolConfig{
		PoolSize:  5,
		QueueSize: 0,
		Clock:     types.NewRealClock(),
	}
}

const (
	poolStateCreated int32 = iota
	poolStateRunning
	poolStateClosed
)

// FixedWorkerPool implements a fixed-size worker pool
type FixedWorkerPool struct {
	config   *FixedWorkerPoolConfig
	workers  []*Worker
	taskChan chan types.Task
	logger   *zap.Logger

	state     int32
	wg        sync.WaitGroup
	closeOnce sync.Once

	// in-flight accounting
	active int64
	peak   int64
}

// NewFixedWorkerPool creates a new fixed worker pool
func NewFixedWorkerPool(config *FixedWorkerPoolConfig) (*FixedWorkerPool, error) {
	if config == nil {
		config = DefaultFixedWorkerPoolConfig()
	}

	if config.PoolSize <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", config.PoolSize)
	}
	if config.QueueSize < 0 {
		return nil, fmt.Errorf("queue size cannot be negative, got %d", config.QueueSize)
	}

	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := &FixedWorkerPool{
		config:   config,
		workers:  make([]*Worker, config.PoolSize),
		taskChan: make(chan types.Task, config.QueueSize),
		logger:   logger,
	}

	for i := 0; i < config.PoolSize; i++ {
		worker := NewWorker(i, pool.taskChan, config.Clock)
		if config.ErrorHandler != nil {
			worker.SetErrorHandler(config.ErrorHandler)
		}
		worker.SetCallbacks(pool.taskStarted, pool.taskFinished)
		pool.workers[i] = worker
	}

	return pool, nil
}

// Start starts the worker pool. ctx is handed to every task.
func (p *FixedWorkerPool) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.state, poolStateCreated, poolStateRunning) {
		if atomic.LoadInt32(&p.state) == poolStateRunning {
			return fmt.Errorf("worker pool is already running")
		}
		return types.ErrPoolClosed
	}

	for _, worker := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(ctx)
		}(worker)
	}

	p.logger.Debug("Worker pool started", zap.Int("pool_size", p.config.PoolSize))
	return nil
}

// Submit hands a task to the pool, blocking until it is accepted or ctx is done
func (p *FixedWorkerPool) Submit(ctx context.Context, task types.Task) error {
	switch atomic.LoadInt32(&p.state) {
	case poolStateCreated:
		return types.ErrPoolNotStarted
	case poolStateClosed:
		return types.ErrPoolClosed
	}

	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	select {
	case p.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for every accepted task to finish.
// Submit must not be called concurrently with Close.
func (p *FixedWorkerPool) Close() error {
	closed := false

	p.closeOnce.Do(func() {
		state := atomic.SwapInt32(&p.state, poolStateClosed)
		close(p.taskChan)
		if state == poolStateRunning {
			p.wg.Wait()
		}
		closed = true
	})

	if !closed {
		return types.ErrPoolClosed
	}

	p.logger.Debug("Worker pool closed",
		zap.Int64("peak_active", atomic.LoadInt64(&p.peak)))
	return nil
}

// Size returns the worker pool size
func (p *FixedWorkerPool) Size() int {
	return p.config.PoolSize
}

// Stats gets worker pool statistics
func (p *FixedWorkerPool) Stats() types.WorkerPoolStats {
	stats := types.WorkerPoolStats{
		PoolSize:      p.config.PoolSize,
		ActiveWorkers: int(atomic.LoadInt64(&p.active)),
		PeakActive:    int(atomic.LoadInt64(&p.peak)),
	}

	for _, worker := range p.workers {
		ws := worker.Stats()
		stats.Processed += ws.TotalProcessed
		stats.Failed += ws.TotalFailed
	}

	return stats
}

// GetWorkerStats gets statistics of all Workers
func (p *FixedWorkerPool) GetWorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, worker := range p.workers {
		stats[i] = worker.Stats()
	}
	return stats
}

// IsRunning checks if the worker pool is running
func (p *FixedWorkerPool) IsRunning() bool {
	return atomic.LoadInt32(&p.state) == poolStateRunning
}

// IsClosed checks if the worker pool is closed
func (p *FixedWorkerPool) IsClosed() bool {
	return atomic.LoadInt32(&p.state) == poolStateClosed
}

func (p *FixedWorkerPool) taskStarted() {
	current := atomic.AddInt64(&p.active, 1)
	for {
		peak := atomic.LoadInt64(&p.peak)
		if current <= peak {
			break
		}
		if atomic.CompareAndSwapInt64(&p.peak, peak, current) {
			break
		}
	}
}

func (p *FixedWorkerPool) taskFinished(time.Duration, bool) {
	atomic.AddInt64(&p.active, -1)
}
