package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrTimeout", ErrTimeout},
		{"ErrPoolClosed", ErrPoolClosed},
		{"ErrPoolNotStarted", ErrPoolNotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := NewValidationError("batchSize", "cannot exceed %d", 100)
		assert.Equal(t, "batchSize: cannot exceed 100", err.Error())
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &ValidationError{Message: "Batch items array cannot be empty"}
		assert.Equal(t, "Batch items array cannot be empty", err.Error())
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("load options: %w", NewValidationError("maxConcurrency", "must be a positive number"))
		assert.True(t, IsValidation(err))
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.False(t, errors.Is(err, ErrTimeout))
	})

	t.Run("other errors", func(t *testing.T) {
		assert.False(t, IsValidation(errors.New("boom")))
		assert.False(t, IsValidation(nil))
	})
}
