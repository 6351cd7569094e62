package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/jzx17/gobulk/pkg/types"
)

// DefaultTimeoutMessage is used when ExecuteWithTimeout is given no message
const DefaultTimeoutMessage = "Operation timed out"

// Response carries the HTTP-level details of a failed remote call
type Response struct {
	Status  int
	Message string
	Code    int
	Type    string
}

// RemoteError is a failure reported by the remote backend for one call.
// Code is the backend's numeric error code (0 when absent); Response, when
// set, carries the transport status.
type RemoteError struct {
	Message  string
	Code     int
	Type     string
	Response *Response
	Err      error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != 0 {
		return fmt.Sprintf("remote error (code %d)", e.Code)
	}
	if e.Response != nil && e.Response.Status != 0 {
		return fmt.Sprintf("remote error (status %d)", e.Response.Status)
	}
	return "remote error"
}

// Unwrap returns the underlying error
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// StatusCoder is implemented by foreign errors that expose a numeric status
type StatusCoder interface {
	StatusCode() int
}

// TimeoutError is returned by ExecuteWithTimeout when an attempt outlives its window
type TimeoutError struct {
	Message string
	Timeout time.Duration
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return e.Message
}

// Timeout reports true, matching the net.Error convention
func (e *TimeoutError) Timeout() bool {
	return true
}

// Is makes errors.Is(err, types.ErrTimeout) true
func (e *TimeoutError) Is(target error) bool {
	return target == types.ErrTimeout
}

// IsTimeout checks if an error is an attempt timeout
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// PanicError records a panic raised by an operation
type PanicError struct {
	Value interface{}
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("operation panicked: %v", e.Value)
}

// Class is the closed set of failure classes used for retry decisions
type Class int

const (
	// ClassPermanent failures are recorded immediately
	ClassPermanent Class = iota
	// ClassRetryable failures carry a code from the retryable set
	ClassRetryable
	// ClassTimeout failures are attempt timeouts without a retryable code
	ClassTimeout
)

// String returns the string representation of Class
func (c Class) String() string {
	switch c {
	case ClassPermanent:
		return "permanent"
	case ClassRetryable:
		return "retryable"
	case ClassTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying one failure
type Classification struct {
	Class   Class
	Code    int
	HasCode bool
}

// Retryable reports whether the failure may be retried
func (c Classification) Retryable() bool {
	return c.Class == ClassRetryable
}

// Classify inspects err once and places it in a failure class.
// A failure is retryable iff a status can be extracted and it is in codes.
func Classify(err error, codes []int) Classification {
	if err == nil {
		return Classification{Class: ClassPermanent}
	}

	status, ok := StatusOf(err)
	if ok && containsCode(codes, status) {
		return Classification{Class: ClassRetryable, Code: status, HasCode: true}
	}

	if IsTimeout(err) {
		return Classification{Class: ClassTimeout, Code: status, HasCode: ok}
	}

	return Classification{Class: ClassPermanent, Code: status, HasCode: ok}
}

// StatusOf extracts the status used for retry classification: the top-level
// code when present, otherwise the nested response status.
func StatusOf(err error) (int, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Code != 0 {
			return remoteErr.Code, true
		}
		if remoteErr.Response != nil && remoteErr.Response.Status != 0 {
			return remoteErr.Response.Status, true
		}
		return 0, false
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		if status := coder.StatusCode(); status != 0 {
			return status, true
		}
	}

	return 0, false
}

// CodeOf extracts the top-level error code reported for a failed item
func CodeOf(err error) (int, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Code, remoteErr.Code != 0
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		status := coder.StatusCode()
		return status, status != 0
	}

	return 0, false
}

// TypeOf extracts the backend error type reported for a failed item
func TypeOf(err error) (string, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Type, remoteErr.Type != ""
	}

	var typer interface{ ErrorType() string }
	if errors.As(err, &typer) {
		errType := typer.ErrorType()
		return errType, errType != ""
	}

	return "", false
}

func containsCode(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
