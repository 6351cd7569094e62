package batch

import (
	"context"
	"time"

	"github.com/jzx17/gobulk/pkg/retry"
)

// Operation performs the remote call for one item
type Operation[T, R any] func(ctx context.Context, item T) (R, error)

// ProcessItem runs one item through the retry executor and records the
// outcome. It never returns an error: terminal failures, timeouts and panics
// all become a failed ItemResult so sibling items are unaffected.
func ProcessItem[T, R any](ctx context.Context, executor *retry.Executor, item WorkItem[T], op Operation[T, R], attemptTimeout time.Duration) ItemResult[R] {
	fn := func(ctx context.Context) (R, error) {
		return op(ctx, item.Payload)
	}

	var (
		data R
		err  error
	)
	if attemptTimeout > 0 {
		data, err = retry.ExecuteWithRetryAndTimeout(executor, ctx, fn, attemptTimeout)
	} else {
		data, err = retry.Execute(executor, ctx, fn)
	}

	if err != nil {
		return failedResult[R](item.Index, err)
	}

	return ItemResult[R]{
		Success: true,
		Index:   item.Index,
		Data:    data,
	}
}
