package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.StagingDir == c.Paths.OutputDir {
		return errors.New("paths.staging_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if err := ensurePositiveMap(map[string]int{
		"workers.count":                    c.Workers.Count,
		"workers.job_timeout":              c.Workers.JobTimeout,
		"workers.queue_poll_interval":      c.Workers.QueuePollInterval,
		"workers.error_retry_interval":     c.Workers.ErrorRetryInterval,
		"workers.retention_hours":          c.Workers.RetentionHours,
		"workers.retention_sweep_interval": c.Workers.RetentionSweep,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.MaxUploadMiB <= 0 {
		return errors.New("security.max_upload_mib must be positive")
	}
	if c.Security.MinConfidence < 0 || c.Security.MinConfidence > 100 {
		return errors.New("security.min_confidence_percent must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.BufferCapacity <= 0 {
		return errors.New("notifications.buffer_capacity must be positive")
	}
	return nil
}

func (c *Config) validateTools() error {
	tools := map[string]string{
		"tools.soffice": c.Tools.Soffice,
		"tools.ffmpeg":  c.Tools.FFmpeg,
		"tools.zip":     c.Tools.Zip,
		"tools.unzip":   c.Tools.Unzip,
		"tools.tar":     c.Tools.Tar,
		"tools.assimp":  c.Tools.Assimp,
	}
	for name, value := range tools {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
