package meshconv

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

// Client wraps the assimp CLI for 3D and CAD mesh export.
type Client struct {
	binary  string
	timeout time.Duration
	exec    services.Executor
}

// New constructs a mesh conversion client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("assimp binary required")
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

// Export converts inputPath into the mesh format implied by outputPath's
// extension.
func (c *Client) Export(ctx context.Context, inputPath, outputPath string) error {
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

	if err := c.exec.Run(runCtx, c.binary, []string{"export", inputPath, outputPath}, nil); err != nil {
		return err
	}

	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrConversion, "meshconv", "export",
			fmt.Sprintf("expected output %s missing", outputPath), err)
	}
	return nil
}
