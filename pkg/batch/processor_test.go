package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gobulk/internal/testutils"
	"github.com/jzx17/gobulk/pkg/retry"
)

type typedErr struct{}

func (typedErr) Error() string     { return "quota exceeded" }
func (typedErr) StatusCode() int   { return 402 }
func (typedErr) ErrorType() string { return "billing_limit" }

func TestProcessItem(t *testing.T) {
	clock := testutils.NewRecordingClock(t)
	executor := retry.NewExecutor(retry.DefaultOptions(), retry.WithClock(clock), retry.WithJitter(nil))

	t.Run("success", func(t *testing.T) {
		result := ProcessItem(context.Background(), executor, WorkItem[string]{Index: 4, Payload: "a"},
			func(_ context.Context, s string) (string, error) { return s + "!", nil }, 0)

		assert.True(t, result.Success)
		assert.Equal(t, 4, result.Index)
		assert.Equal(t, "a!", result.Data)
		assert.Nil(t, result.Error)
	})

	t.Run("remote error fields", func(t *testing.T) {
		remote := &retry.RemoteError{Message: "Document with the requested ID already exists", Code: 409, Type: "document_already_exists"}
		result := ProcessItem(context.Background(), executor, WorkItem[string]{Index: 2},
			func(context.Context, string) (string, error) { return "", remote }, 0)

		assert.False(t, result.Success)
		assert.Equal(t, 2, result.Index)
		require.NotNil(t, result.Error)
		assert.Equal(t, remote.Message, result.Error.Message)
		assert.Equal(t, 409, result.Error.Code)
		assert.Equal(t, "document_already_exists", result.Error.Type)
		assert.Same(t, remote, result.Error.Err)
	})

	t.Run("wrapped foreign error", func(t *testing.T) {
		err := fmt.Errorf("create: %w", typedErr{})
		result := ProcessItem(context.Background(), executor, WorkItem[int]{Index: 0},
			func(context.Context, int) (int, error) { return 0, err }, 0)

		require.NotNil(t, result.Error)
		assert.Equal(t, "create: quota exceeded", result.Error.Message)
		assert.Equal(t, 402, result.Error.Code)
		assert.Equal(t, "billing_limit", result.Error.Type)
	})

	t.Run("plain error", func(t *testing.T) {
		result := ProcessItem(context.Background(), executor, WorkItem[int]{Index: 1},
			func(context.Context, int) (int, error) { return 0, errors.New("plain") }, 0)

		require.NotNil(t, result.Error)
		assert.Equal(t, "plain", result.Error.Message)
		assert.Zero(t, result.Error.Code)
		assert.Empty(t, result.Error.Type)
	})
}

func TestProcessItem_AttemptTimeoutPerAttempt(t *testing.T) {
	executor := retry.NewExecutor(retry.Options{
		MaxRetries:        2,
		InitialDelay:      time.Millisecond,
		MaxDelay:          time.Millisecond,
		BackoffMultiplier: 1,
		RetryableCodes:    []int{503},
	}, retry.WithJitter(nil))

	op, calls := testutils.ScriptedOp("ok", testutils.RemoteErr(503, "unavailable"))
	result := ProcessItem(context.Background(), executor, WorkItem[int]{Index: 0},
		func(ctx context.Context, _ int) (string, error) { return op(ctx) }, time.Second)

	assert.True(t, result.Success)
	assert.Equal(t, "ok", result.Data)
	assert.Equal(t, int32(2), *calls)
}
