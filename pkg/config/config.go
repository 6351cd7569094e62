// Package config loads the gobulk YAML configuration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jzx17/gobulk/pkg/batch"
	"github.com/jzx17/gobulk/pkg/documents"
	"github.com/jzx17/gobulk/pkg/retry"
	"github.com/jzx17/gobulk/pkg/types"
)

// Environment variables that override values from the file
const (
	EnvAPIKey    = "GOBULK_API_KEY"
	EnvEndpoint  = "GOBULK_ENDPOINT"
	EnvProjectID = "GOBULK_PROJECT_ID"
)

// Config is the root configuration
type Config struct {
	Appwrite AppwriteConfig `yaml:"appwrite"`
	Batch    BatchConfig    `yaml:"batch"`
	Log      LogConfig      `yaml:"log"`
}

// AppwriteConfig locates the target collection and holds credentials
type AppwriteConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	ProjectID    string        `yaml:"project_id"`
	APIKey       string        `yaml:"api_key"`
	DatabaseID   string        `yaml:"database_id"`
	CollectionID string        `yaml:"collection_id"`
	Timeout      time.Duration `yaml:"timeout"`
}

// BatchConfig mirrors batch.Options. Pointer fields distinguish an explicit
// false or zero from an absent key.
type BatchConfig struct {
	ContinueOnError *bool         `yaml:"continue_on_error"`
	BatchSize       int           `yaml:"batch_size"`
	Parallel        bool          `yaml:"parallel"`
	MaxConcurrency  int           `yaml:"max_concurrency"`
	AttemptTimeout  time.Duration `yaml:"attempt_timeout"`
	Retry           RetryConfig   `yaml:"retry"`
}

// RetryConfig mirrors retry.Options
type RetryConfig struct {
	MaxRetries        *int          `yaml:"max_retries"`
	InitialDelay      time.Duration `yaml:"initial_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	RetryableCodes    []int         `yaml:"retryable_codes"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads path, applies environment overrides and fills defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Appwrite.APIKey = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Appwrite.Endpoint = v
	}
	if v := os.Getenv(EnvProjectID); v != "" {
		c.Appwrite.ProjectID = v
	}
}

// ApplyDefaults fills every unset field with its default
func (c *Config) ApplyDefaults() {
	batchDefaults := batch.DefaultOptions()

	if c.Appwrite.Timeout == 0 {
		c.Appwrite.Timeout = documents.DefaultTimeout
	}

	b := &c.Batch
	if b.ContinueOnError == nil {
		v := batchDefaults.ContinueOnError
		b.ContinueOnError = &v
	}
	if b.BatchSize == 0 {
		b.BatchSize = batchDefaults.BatchSize
	}
	if b.MaxConcurrency == 0 {
		b.MaxConcurrency = batchDefaults.MaxConcurrency
	}

	r := &b.Retry
	if r.MaxRetries == nil {
		v := batchDefaults.Retry.MaxRetries
		r.MaxRetries = &v
	}
	if r.InitialDelay == 0 {
		r.InitialDelay = batchDefaults.Retry.InitialDelay
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = batchDefaults.Retry.MaxDelay
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = batchDefaults.Retry.BackoffMultiplier
	}
	if len(r.RetryableCodes) == 0 {
		r.RetryableCodes = batchDefaults.Retry.RetryableCodes
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// BatchOptions converts the batch section
func (c *Config) BatchOptions() batch.Options {
	opts := batch.DefaultOptions()
	b := c.Batch

	if b.ContinueOnError != nil {
		opts.ContinueOnError = *b.ContinueOnError
	}
	opts.BatchSize = b.BatchSize
	opts.Parallel = b.Parallel
	opts.MaxConcurrency = b.MaxConcurrency
	opts.AttemptTimeout = b.AttemptTimeout

	opts.Retry = retry.Options{
		MaxRetries:        opts.Retry.MaxRetries,
		InitialDelay:      b.Retry.InitialDelay,
		MaxDelay:          b.Retry.MaxDelay,
		BackoffMultiplier: b.Retry.BackoffMultiplier,
		RetryableCodes:    append([]int(nil), b.Retry.RetryableCodes...),
	}
	if b.Retry.MaxRetries != nil {
		opts.Retry.MaxRetries = *b.Retry.MaxRetries
	}
	return opts
}

// ClientConfig converts the appwrite section
func (c *Config) ClientConfig() documents.ClientConfig {
	return documents.ClientConfig{
		Endpoint:     c.Appwrite.Endpoint,
		ProjectID:    c.Appwrite.ProjectID,
		APIKey:       c.Appwrite.APIKey,
		DatabaseID:   c.Appwrite.DatabaseID,
		CollectionID: c.Appwrite.CollectionID,
		Timeout:      c.Appwrite.Timeout,
	}
}

// Validate checks required credentials and the batch options
func (c *Config) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"appwrite.endpoint", c.Appwrite.Endpoint},
		{"appwrite.project_id", c.Appwrite.ProjectID},
		{"appwrite.api_key", c.Appwrite.APIKey},
		{"appwrite.database_id", c.Appwrite.DatabaseID},
		{"appwrite.collection_id", c.Appwrite.CollectionID},
	}
	for _, r := range required {
		if r.value == "" {
			return types.NewValidationError(r.field, "is required")
		}
	}

	if err := c.BatchOptions().Validate(); err != nil {
		return fmt.Errorf("invalid batch config: %w", err)
	}
	return nil
}
