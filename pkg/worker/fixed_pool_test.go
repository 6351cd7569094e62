package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jzx17/gobulk/pkg/types"
)

func TestNewFixedWorkerPool(t *testing.T) {
	tests := []struct {
		name        string
		config      *FixedWorkerPoolConfig
		expectError bool
	}{
		{
			name:        "nil config should use default",
			config:      nil,
			expectError: false,
		},
		{
			name:        "valid config",
			config:      &FixedWorkerPoolConfig{PoolSize: 5},
			expectError: false,
		},
		{
			name:        "buffered queue",
			config:      &FixedWorkerPoolConfig{PoolSize: 2, QueueSize: 10},
			expectError: false,
		},
		{
			name:        "zero pool size should error",
			config:      &FixedWorkerPoolConfig{PoolSize: 0},
			expectError: true,
		},
		{
			name:        "negative queue size should error",
			config:      &FixedWorkerPoolConfig{PoolSize: 5, QueueSize: -1},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewFixedWorkerPool(tt.config)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, pool)
				return
			}

			require.NoError(t, err)
			if tt.config == nil {
				assert.Equal(t, 5, pool.Size())
			} else {
				assert.Equal(t, tt.config.PoolSize, pool.Size())
			}
		})
	}
}

func TestFixedWorkerPool_Lifecycle(t *testing.T) {
	pool, err := NewFixedWorkerPool(&FixedWorkerPoolConfig{PoolSize: 2, Logger: zap.NewNop()})
	require.NoError(t, err)

	task := NewBasicTask(func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, pool.Submit(context.Background(), task), types.ErrPoolNotStarted)

	require.NoError(t, pool.Start(context.Background()))
	assert.True(t, pool.IsRunning())
	assert.Error(t, pool.Start(context.Background()))

	assert.Error(t, pool.Submit(context.Background(), nil))
	require.NoError(t, pool.Submit(context.Background(), task))

	require.NoError(t, pool.Close())
	assert.True(t, pool.IsClosed())
	assert.ErrorIs(t, pool.Close(), types.ErrPoolClosed)
	assert.ErrorIs(t, pool.Submit(context.Background(), task), types.ErrPoolClosed)
	assert.ErrorIs(t, pool.Start(context.Background()), types.ErrPoolClosed)
}

func TestFixedWorkerPool_CloseWithoutStart(t *testing.T) {
	pool, err := NewFixedWorkerPool(&FixedWorkerPoolConfig{PoolSize: 1})
	require.NoError(t, err)
	assert.NoError(t, pool.Close())
}

func TestFixedWorkerPool_CloseWaitsForAcceptedTasks(t *testing.T) {
	pool, err := NewFixedWorkerPool(&FixedWorkerPoolConfig{PoolSize: 3})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	var completed int32
	for i := 0; i < 10; i++ {
		err := pool.Submit(context.Background(), NewBasicTask(func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return nil
		}))
		require.NoError(t, err)
	}

	require.NoError(t, pool.Close())
	assert.Equal(t, int32(10), atomic.LoadInt32(&completed))
	assert.Equal(t, int64(10), pool.Stats().Processed)
}

func TestFixedWorkerPool_BoundsInFlightTasks(t *testing.T) {
	const poolSize = 3

	pool, err := NewFixedWorkerPool(&FixedWorkerPoolConfig{PoolSize: poolSize})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	var mu sync.Mutex
	current, peak := 0, 0

	for i := 0; i < 12; i++ {
		err := pool.Submit(context.Background(), NewBasicTask(func(ctx context.Context) error {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			return nil
		}))
		require.NoError(t, err)
	}
	require.NoError(t, pool.Close())

	assert.LessOrEqual(t, peak, poolSize)
	assert.LessOrEqual(t, pool.Stats().PeakActive, poolSize)
	assert.Greater(t, pool.Stats().PeakActive, 1)
	assert.Equal(t, 0, pool.Stats().ActiveWorkers)
}

func TestFixedWorkerPool_SubmitHonoursContext(t *testing.T) {
	pool, err := NewFixedWorkerPool(&FixedWorkerPoolConfig{PoolSize: 1})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	release := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), NewBasicTask(func(ctx context.Context) error {
		<-release
		return nil
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// the only worker is busy and the queue is unbuffered
	err = pool.Submit(ctx, NewBasicTask(func(ctx context.Context) error { return nil }))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, pool.Close())
}

func TestFixedWorkerPool_ErrorsAndPanics(t *testing.T) {
	var mu sync.Mutex
	handled := map[string]error{}

	pool, err := NewFixedWorkerPool(&FixedWorkerPoolConfig{
		PoolSize: 2,
		ErrorHandler: func(taskID string, err error) {
			mu.Lock()
			handled[taskID] = err
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))

	boom := errors.New("boom")
	require.NoError(t, pool.Submit(context.Background(), NewBasicTaskWithID("fails", func(ctx context.Context) error {
		return boom
	})))
	require.NoError(t, pool.Submit(context.Background(), NewBasicTaskWithID("panics", func(ctx context.Context) error {
		panic("unexpected")
	})))
	require.NoError(t, pool.Submit(context.Background(), NewBasicTaskWithID("ok", func(ctx context.Context) error {
		return nil
	})))
	require.NoError(t, pool.Close())

	stats := pool.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, int64(2), stats.Failed)

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, handled["fails"], boom)
	assert.Contains(t, handled["panics"].Error(), "unexpected")
	assert.NotContains(t, handled, "ok")

	for _, ws := range pool.GetWorkerStats() {
		assert.Equal(t, WorkerStateStopped, ws.State)
	}
}

func TestBasicTask(t *testing.T) {
	a := NewBasicTask(func(ctx context.Context) error { return nil })
	b := NewBasicTask(func(ctx context.Context) error { return nil })
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NoError(t, a.Execute(context.Background()))

	empty := NewBasicTaskWithID("empty", nil)
	assert.Equal(t, "empty", empty.ID())
	assert.Error(t, empty.Execute(context.Background()))
}

func TestWorkerState_String(t *testing.T) {
	assert.Equal(t, "idle", WorkerStateIdle.String())
	assert.Equal(t, "working", WorkerStateWorking.String())
	assert.Equal(t, "stopped", WorkerStateStopped.String())
	assert.Equal(t, "unknown", WorkerState(42).String())
}
