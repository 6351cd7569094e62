package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gobulk/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "gobulk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
appwrite:
  endpoint: https://cloud.appwrite.io/v1
  project_id: proj
  api_key: key
  database_id: main
  collection_id: posts
  timeout: 15s
batch:
  continue_on_error: false
  batch_size: 25
  parallel: true
  max_concurrency: 8
  attempt_timeout: 5s
  retry:
    max_retries: 0
    initial_delay: 250ms
    max_delay: 2s
    backoff_multiplier: 3
    retryable_codes: [429, 503]
log:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://cloud.appwrite.io/v1", cfg.Appwrite.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Appwrite.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)

	opts := cfg.BatchOptions()
	assert.False(t, opts.ContinueOnError)
	assert.Equal(t, 25, opts.BatchSize)
	assert.True(t, opts.Parallel)
	assert.Equal(t, 8, opts.MaxConcurrency)
	assert.Equal(t, 5*time.Second, opts.AttemptTimeout)
	assert.Equal(t, 0, opts.Retry.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, opts.Retry.InitialDelay)
	assert.Equal(t, 2*time.Second, opts.Retry.MaxDelay)
	assert.Equal(t, 3.0, opts.Retry.BackoffMultiplier)
	assert.Equal(t, []int{429, 503}, opts.Retry.RetryableCodes)

	client := cfg.ClientConfig()
	assert.Equal(t, "posts", client.CollectionID)
	assert.Equal(t, 15*time.Second, client.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
appwrite:
  endpoint: http://localhost/v1
  project_id: p
  api_key: k
  database_id: d
  collection_id: c
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	opts := cfg.BatchOptions()
	assert.True(t, opts.ContinueOnError)
	assert.Equal(t, 10, opts.BatchSize)
	assert.False(t, opts.Parallel)
	assert.Equal(t, 5, opts.MaxConcurrency)
	assert.Equal(t, 3, opts.Retry.MaxRetries)
	assert.Equal(t, time.Second, opts.Retry.InitialDelay)
	assert.Equal(t, 10*time.Second, opts.Retry.MaxDelay)
	assert.Equal(t, 2.0, opts.Retry.BackoffMultiplier)
	assert.Equal(t, []int{429, 500, 502, 503, 504}, opts.Retry.RetryableCodes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Appwrite.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvEndpoint, "http://env/v1")
	t.Setenv(EnvProjectID, "env-project")

	path := writeConfig(t, `
appwrite:
  endpoint: http://file/v1
  project_id: file-project
  database_id: d
  collection_id: c
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Appwrite.APIKey)
	assert.Equal(t, "http://env/v1", cfg.Appwrite.Endpoint)
	assert.Equal(t, "env-project", cfg.Appwrite.ProjectID)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "batch: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Appwrite = AppwriteConfig{
			Endpoint: "http://x/v1", ProjectID: "p", APIKey: "k", DatabaseID: "d", CollectionID: "c",
		}
		return cfg
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Appwrite.APIKey = ""
	err := cfg.Validate()
	assert.True(t, types.IsValidation(err))
	assert.Contains(t, err.Error(), "appwrite.api_key")

	cfg = valid()
	cfg.Batch.BatchSize = 500
	err = cfg.Validate()
	assert.True(t, types.IsValidation(err))
	assert.Contains(t, err.Error(), "batchSize")

	cfg = valid()
	cfg.Batch.MaxConcurrency = 21
	assert.Error(t, cfg.Validate())
}
