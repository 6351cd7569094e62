package batch

import "fmt"

// Details is the structured half of a formatted result
type Details struct {
	Total              int            `json:"total"`
	Successful         int            `json:"successful"`
	Failed             int            `json:"failed"`
	SuccessRate        string         `json:"successRate"`
	Duration           string         `json:"duration"`
	AverageTimePerItem string         `json:"averageTimePerItem"`
	Errors             []IndexedError `json:"errors,omitempty"`
}

// Formatted is a human-readable rendering of a Result
type Formatted struct {
	Summary string  `json:"summary"`
	Details Details `json:"details"`
}

// Format renders result without modifying it. Errors is nil when no item failed.
func Format[R any](result *Result[R]) Formatted {
	if result == nil {
		result = &Result[R]{}
	}

	rate := 0.0
	avg := "0ms"
	if result.Total > 0 {
		rate = float64(result.Successful) / float64(result.Total) * 100
		avg = fmt.Sprintf("%.2fms", float64(result.DurationMs)/float64(result.Total))
	}

	var errs []IndexedError
	if len(result.Errors) > 0 {
		errs = make([]IndexedError, len(result.Errors))
		copy(errs, result.Errors)
	}

	return Formatted{
		Summary: fmt.Sprintf("%d/%d successful (%.2f%%), %d failed, %dms",
			result.Successful, result.Total, rate, result.Failed, result.DurationMs),
		Details: Details{
			Total:              result.Total,
			Successful:         result.Successful,
			Failed:             result.Failed,
			SuccessRate:        fmt.Sprintf("%.2f%%", rate),
			Duration:           fmt.Sprintf("%dms", result.DurationMs),
			AverageTimePerItem: avg,
			Errors:             errs,
		},
	}
}
