package batch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gobulk/pkg/types"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.ContinueOnError)
	assert.Equal(t, 10, opts.BatchSize)
	assert.False(t, opts.Parallel)
	assert.Equal(t, 5, opts.MaxConcurrency)
	assert.Equal(t, 3, opts.Retry.MaxRetries)
	assert.Equal(t, time.Second, opts.Retry.InitialDelay)
	assert.Equal(t, 10*time.Second, opts.Retry.MaxDelay)
	assert.Equal(t, []int{429, 500, 502, 503, 504}, opts.Retry.RetryableCodes)
	assert.Zero(t, opts.AttemptTimeout)
	require.NoError(t, opts.Validate())

	// every call returns an independent copy
	opts.Retry.RetryableCodes[0] = 418
	assert.Equal(t, 429, DefaultOptions().Retry.RetryableCodes[0])
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		field   string
		wantErr bool
	}{
		{name: "defaults", mutate: func(o *Options) {}},
		{name: "min batch size", mutate: func(o *Options) { o.BatchSize = 1 }},
		{name: "max batch size", mutate: func(o *Options) { o.BatchSize = 100 }},
		{name: "zero batch size", mutate: func(o *Options) { o.BatchSize = 0 }, field: "batchSize", wantErr: true},
		{name: "negative batch size", mutate: func(o *Options) { o.BatchSize = -5 }, field: "batchSize", wantErr: true},
		{name: "batch size too large", mutate: func(o *Options) { o.BatchSize = 101 }, field: "batchSize", wantErr: true},
		{name: "max concurrency bounds", mutate: func(o *Options) { o.MaxConcurrency = 20 }},
		{name: "zero concurrency", mutate: func(o *Options) { o.MaxConcurrency = 0 }, field: "maxConcurrency", wantErr: true},
		{name: "concurrency too large", mutate: func(o *Options) { o.MaxConcurrency = 21 }, field: "maxConcurrency", wantErr: true},
		{name: "negative attempt timeout", mutate: func(o *Options) { o.AttemptTimeout = -time.Second }, field: "attemptTimeout", wantErr: true},
		{name: "invalid retry options", mutate: func(o *Options) { o.Retry.MaxRetries = -1 }, field: "maxRetries", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			err := opts.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidInput))

			var validationErr *types.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}
