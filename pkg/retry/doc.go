// Package retry runs one remote operation with status-code driven retries.
//
// A failed attempt is classified once into a closed set of classes:
//
//   - ClassRetryable: the error carries a code (RemoteError.Code, or the
//     nested RemoteError.Response.Status when no code is set, or a foreign
//     StatusCode()) that is in Options.RetryableCodes
//   - ClassTimeout: the attempt outlived its ExecuteWithTimeout window
//   - ClassPermanent: everything else
//
// Only retryable failures are retried. Before retry n (0-based) the executor
// waits
//
//	min(InitialDelay * BackoffMultiplier^n, MaxDelay) + jitter
//
// where jitter is uniform in [0, 1s) unless replaced with WithJitter. When
// retries are exhausted the last error is returned exactly as the operation
// produced it.
//
// Basic usage:
//
//	executor := retry.NewExecutor(retry.DefaultOptions(),
//		retry.WithEventHandler(retry.NewZapEventHandler(logger)))
//
//	doc, err := retry.Execute(executor, ctx, func(ctx context.Context) (*Document, error) {
//		return client.CreateDocument(ctx, item)
//	})
//
// Per-attempt timeouts:
//
//	doc, err := retry.ExecuteWithRetryAndTimeout(executor, ctx, fn, 5*time.Second)
//
// Every attempt gets a fresh timeout window; a timed out attempt is not
// retried because a *TimeoutError carries no retryable code.
//
// Executors are safe for concurrent use and keep aggregate statistics
// (GetStats) across every operation they run.
package retry
