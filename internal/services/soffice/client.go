package soffice

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

// Client wraps headless LibreOffice CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    services.Executor
}

// New constructs a LibreOffice client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("soffice binary required")
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

// Convert renders inputPath into targetFormat inside outputDir and returns
// the produced file path. LibreOffice names the output after the input
// basename; the caller renames as needed.
func (c *Client) Convert(ctx context.Context, inputPath, outputDir, targetFormat string) (string, error) {
	if inputPath == "" {
		return "", errors.New("input path required")
	}
	if outputDir == "" {
		return "", errors.New("output directory required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"--headless",
		"--norestore",
		"--convert-to", targetFormat,
		"--outdir", outputDir,
		inputPath,
	}
	if err := c.exec.Run(runCtx, c.binary, args, nil); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outputDir, base+"."+targetFormat)
	if _, err := os.Stat(produced); err != nil {
		return "", services.Wrap(services.ErrConversion, "soffice", "convert",
			fmt.Sprintf("expected output %s missing", produced), err)
	}
	return produced, nil
}
