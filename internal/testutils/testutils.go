// Package testutils provides testing helpers shared by gobulk packages
package testutils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jzx17/gobulk/pkg/retry"
)

// Context returns a context cancelled when the test ends or after timeout
func Context(t testing.TB, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RemoteErr builds a remote error with the given top-level code
func RemoteErr(code int, message string) *retry.RemoteError {
	return &retry.RemoteError{Message: message, Code: code}
}

// ScriptedOp returns an operation that fails with errs in order, then
// succeeds with value. The returned counter records every invocation.
func ScriptedOp[T any](value T, errs ...error) (func(ctx context.Context) (T, error), *int32) {
	var calls int32
	return func(ctx context.Context) (T, error) {
		n := atomic.AddInt32(&calls, 1)
		if int(n) <= len(errs) {
			var zero T
			return zero, errs[n-1]
		}
		return value, nil
	}, &calls
}

// ConcurrencyProbe tracks how many callers are inside Enter/Exit at once
type ConcurrencyProbe struct {
	mu      sync.Mutex
	current int
	peak    int
}

// Enter marks the start of an in-flight operation
func (p *ConcurrencyProbe) Enter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	if p.current > p.peak {
		p.peak = p.current
	}
}

// Exit marks the end of an in-flight operation
func (p *ConcurrencyProbe) Exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current--
}

// Peak returns the highest observed number of simultaneous operations
func (p *ConcurrencyProbe) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// ErrBoom is a generic permanent failure for tests
var ErrBoom = errors.New("boom")
