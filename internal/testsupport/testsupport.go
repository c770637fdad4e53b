// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"fileforge/internal/config"
)

// ConfigOption adjusts a test configuration before directories are created.
type ConfigOption func(*config.Config)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory, with staging, output, and log directories already created.
func NewConfig(t *testing.T, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(root, "staging")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Workers.Count = 2
	cfg.Workers.JobTimeout = 30
	cfg.Workers.QueuePollInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("create test directories: %v", err)
	}
	return &cfg
}

// WithWorkers sets the worker pool size.
func WithWorkers(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workers.Count = count
	}
}

// WithSecurityDisabled turns off the pre-flight scanner gate.
func WithSecurityDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Security.Enabled = false
	}
}

// WithAuditDisabled turns off the audit ledger.
func WithAuditDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audit.Enabled = false
	}
}

// WithJobTimeout sets the per-job execution budget in seconds.
func WithJobTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workers.JobTimeout = seconds
	}
}
