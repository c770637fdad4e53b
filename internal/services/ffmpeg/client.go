package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fileforge/internal/services"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    services.Executor
}

// New constructs an ffmpeg client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    services.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable name.
func (c *Client) Binary() string {
	return c.binary
}

// Transcode runs ffmpeg from inputPath to outputPath with the provided
// encoding arguments inserted between input and output.
func (c *Client) Transcode(ctx context.Context, inputPath, outputPath string, encodeArgs []string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", inputPath}
	args = append(args, encodeArgs...)
	args = append(args, outputPath)
	if err := c.exec.Run(runCtx, c.binary, args, nil); err != nil {
		return err
	}

	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrConversion, "ffmpeg", "transcode",
			fmt.Sprintf("expected output %s missing", outputPath), err)
	}
	return nil
}
