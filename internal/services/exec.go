package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// CommandExecutor runs commands with os/exec, streaming stdout lines to the
// optional callback and folding stderr into the returned error.
type CommandExecutor struct{}

// Run executes binary with args under ctx.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if onStdout != nil {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("stdout pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start %s: %w", binary, err)
		}
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			onStdout(scanner.Text())
		}
		if err := cmd.Wait(); err != nil {
			return commandError(ctx, binary, err, stderr.String())
		}
		return nil
	}

	if err := cmd.Run(); err != nil {
		return commandError(ctx, binary, err, stderr.String())
	}
	return nil
}

func commandError(ctx context.Context, binary string, err error, stderr string) error {
	if ctx != nil && ctx.Err() != nil {
		return Wrap(ErrTimeout, binary, "run", "command aborted by deadline", ctx.Err())
	}
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		return Wrap(ErrExternalTool, binary, "run", "", err)
	}
	if len(detail) > 512 {
		detail = detail[:512]
	}
	return Wrap(ErrExternalTool, binary, "run", detail, err)
}
