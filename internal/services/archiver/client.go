package archiver

import (
	"context"
	"errors"
	"fmt"
	"os"
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

// Client wraps the zip, unzip, and tar binaries used for archive repacking.
type Client struct {
	zipBinary   string
	unzipBinary string
	tarBinary   string
	timeout     time.Duration
	exec        services.Executor
}

// New constructs an archiver client.
func New(zipBinary, unzipBinary, tarBinary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	zipBinary = strings.TrimSpace(zipBinary)
	unzipBinary = strings.TrimSpace(unzipBinary)
	tarBinary = strings.TrimSpace(tarBinary)
	if zipBinary == "" || unzipBinary == "" || tarBinary == "" {
		return nil, errors.New("zip, unzip, and tar binaries required")
	}
	client := &Client{
		zipBinary:   zipBinary,
		unzipBinary: unzipBinary,
		tarBinary:   tarBinary,
		timeout:     time.Duration(timeoutSeconds) * time.Second,
		exec:        services.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binaries returns the configured executables in zip, unzip, tar order.
func (c *Client) Binaries() []string {
	return []string{c.zipBinary, c.unzipBinary, c.tarBinary}
}

func (c *Client) runCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

// Unpack extracts an archive into destDir. Supported input formats: zip,
// tar, gz (read as a compressed tar stream).
func (c *Client) Unpack(ctx context.Context, inputPath, format, destDir string) error {
	if inputPath == "" || destDir == "" {
		return errors.New("input path and destination required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	runCtx, cancel := c.runCtx(ctx)
	defer cancel()

	switch format {
	case "zip":
		return c.exec.Run(runCtx, c.unzipBinary, []string{"-q", "-o", inputPath, "-d", destDir}, nil)
	case "tar":
		return c.exec.Run(runCtx, c.tarBinary, []string{"-xf", inputPath, "-C", destDir}, nil)
	case "gz":
		return c.exec.Run(runCtx, c.tarBinary, []string{"-xzf", inputPath, "-C", destDir}, nil)
	default:
		return services.Wrap(services.ErrConversion, "archiver", "unpack",
			"no extraction tool for format "+format, nil)
	}
}

// Pack archives the contents of srcDir into outputPath. Supported output
// formats: zip, tar, gz (written as tar.gz).
func (c *Client) Pack(ctx context.Context, srcDir, outputPath, format string) error {
	if srcDir == "" || outputPath == "" {
		return errors.New("source directory and output path required")
	}

	runCtx, cancel := c.runCtx(ctx)
	defer cancel()

	var err error
	switch format {
	case "zip":
		err = c.exec.Run(runCtx, c.zipBinary, []string{"-qr", outputPath, srcDir}, nil)
	case "tar":
		err = c.exec.Run(runCtx, c.tarBinary, []string{"-cf", outputPath, "-C", srcDir, "."}, nil)
	case "gz":
		err = c.exec.Run(runCtx, c.tarBinary, []string{"-czf", outputPath, "-C", srcDir, "."}, nil)
	default:
		return services.Wrap(services.ErrConversion, "archiver", "pack",
			"no packing tool for format "+format, nil)
	}
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(outputPath); statErr != nil {
		return services.Wrap(services.ErrConversion, "archiver", "pack",
			fmt.Sprintf("expected output %s missing", outputPath), statErr)
	}
	return nil
}
