package batch

import (
	"time"

	"github.com/jzx17/gobulk/pkg/retry"
)

// WorkItem is one payload tagged with its position in the submitted input
type WorkItem[T any] struct {
	Index   int
	Payload T
}

// ErrorDetail describes why an item failed. Code is 0 and Type is empty when
// the error did not carry them; Err is the error exactly as the operation
// returned it.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
	Err     error  `json:"-"`
}

// NewErrorDetail extracts message, code and type from err
func NewErrorDetail(err error) *ErrorDetail {
	detail := &ErrorDetail{
		Message: err.Error(),
		Err:     err,
	}
	if code, ok := retry.CodeOf(err); ok {
		detail.Code = code
	}
	if errType, ok := retry.TypeOf(err); ok {
		detail.Type = errType
	}
	return detail
}

// IndexedError is a failed item's error addressed by its input index
type IndexedError struct {
	Index int `json:"index"`
	ErrorDetail
}

// ItemResult is the outcome of one work item
type ItemResult[R any] struct {
	Success bool         `json:"success"`
	Index   int          `json:"index"`
	Data    R            `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// Metadata records how a batch was run
type Metadata struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	BatchSize       int       `json:"batchSize"`
	ContinueOnError bool      `json:"continueOnError"`
}

// Result is the immutable snapshot returned by Run
type Result[R any] struct {
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Results    []ItemResult[R] `json:"results"`
	Errors     []IndexedError  `json:"errors"`
	Duration   time.Duration   `json:"-"`
	DurationMs int64           `json:"durationMs"`
	Metadata   Metadata        `json:"metadata"`
}

// FailedIndices returns the input indices of every failed item, so callers
// can re-drive exactly that subset
func (r *Result[R]) FailedIndices() []int {
	indices := make([]int, 0, len(r.Errors))
	for _, e := range r.Errors {
		indices = append(indices, e.Index)
	}
	return indices
}

// Complete reports whether every submitted item was attempted
func (r *Result[R]) Complete() bool {
	return len(r.Results) == r.Total
}

func failedResult[R any](index int, err error) ItemResult[R] {
	return ItemResult[R]{
		Success: false,
		Index:   index,
		Error:   NewErrorDetail(err),
	}
}
