package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/gobulk/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateIdle represents idle worker state
	WorkerStateIdle WorkerState = iota
	// WorkerStateWorking represents working worker state
	WorkerStateWorking
	// WorkerStateStopped represents stopped worker state
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Worker drains tasks from a shared channel until the channel is closed
type Worker struct {
	id       int
	state    int32 // atomic state
	taskChan <-chan types.Task
	done     chan struct{}

	// statistics
	totalProcessed int64
	totalFailed    int64

	errorHandler types.ErrorHandler

	// pool hooks for in-flight accounting
	startCallback      func()
	completionCallback func(time.Duration, bool)

	clock types.Clock

	mu sync.RWMutex
}

// NewWorker creates a new Worker with the given clock
func NewWorker(id int, taskChan <-chan types.Task, clock types.Clock) *Worker {
	if clock == nil {
		clock = types.NewRealClock()
	}

	return &Worker{
		id:       id,
		state:    int32(WorkerStateIdle),
		taskChan: taskChan,
		done:     make(chan struct{}),
		clock:    clock,
	}
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// SetErrorHandler sets the error handler
func (w *Worker) SetErrorHandler(handler types.ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = handler
}

// SetCallbacks sets the hooks invoked around every task
func (w *Worker) SetCallbacks(onStart func(), onComplete func(time.Duration, bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.startCallback = onStart
	w.completionCallback = onComplete
}

// Start runs the worker loop. Tasks receive ctx; the loop itself only
// ends when the task channel is closed, so every accepted task runs.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)
	defer atomic.StoreInt32(&w.state, int32(WorkerStateStopped))

	for task := range w.taskChan {
		w.processTask(ctx, task)
	}
}

// Done is closed once the worker loop has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// processTask processes a single task
func (w *Worker) processTask(ctx context.Context, task types.Task) {
	atomic.StoreInt32(&w.state, int32(WorkerStateWorking))
	defer atomic.StoreInt32(&w.state, int32(WorkerStateIdle))

	w.mu.RLock()
	onStart, onComplete := w.startCallback, w.completionCallback
	w.mu.RUnlock()

	if onStart != nil {
		onStart()
	}

	startTime := w.clock.Now()
	err := w.executeTask(ctx, task)
	executionTime := w.clock.Since(startTime)

	failed := err != nil
	if failed {
		atomic.AddInt64(&w.totalFailed, 1)
		w.handleError(err, task)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}

	if onComplete != nil {
		onComplete(executionTime, failed)
	}
}

// executeTask executes a task with panic recovery support
func (w *Worker) executeTask(ctx context.Context, task types.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)
			err = fmt.Errorf("worker %d: task %s panicked: %v\n%s", w.id, task.ID(), r, buf[:n])
		}
	}()

	return task.Execute(ctx)
}

func (w *Worker) handleError(err error, task types.Task) {
	w.mu.RLock()
	handler := w.errorHandler
	w.mu.RUnlock()

	if handler != nil {
		handler(task.ID(), err)
	}
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalFailed    int64
}
