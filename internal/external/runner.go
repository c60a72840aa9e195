// Package external runs the tools mug hands off to: make for building
// handler binaries, the Serverless Framework for deploying, and the local
// debugging command. Failures surface the tool's exit code; nothing is
// retried.
package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/crolly/mug/internal/project"
)

// ToolError reports a failed external command.
type ToolError struct {
	Command  []string
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with %d", strings.Join(e.Command, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap exposes ErrExternalTool and the underlying cause.
func (e *ToolError) Unwrap() []error {
	return []error{project.ErrExternalTool, e.Err}
}

// Runner executes one command in a directory.
type Runner interface {
	Run(ctx context.Context, dir string, command []string) error
}

// ExecRunner runs commands with os/exec, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	logger *slog.Logger
}

// NewExecRunner creates an ExecRunner. Nil writers discard output.
func NewExecRunner(stdout, stderr io.Writer, logger *slog.Logger) *ExecRunner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ExecRunner{Stdout: stdout, Stderr: stderr, logger: logger}
}

// Run executes command in dir. A non-zero exit yields a *ToolError.
func (r *ExecRunner) Run(ctx context.Context, dir string, command []string) error {
	if len(command) == 0 {
		return project.Errorf(project.ErrValidation, "run", "", "empty command")
	}

	path, err := exec.LookPath(command[0])
	if err != nil {
		return &ToolError{Command: command, ExitCode: -1, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, command[1:]...)
	cmd.Dir = dir

	// Keep a copy of stderr for the error message.
	var stderr bytes.Buffer
	cmd.Stdout = r.Stdout
	cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)

	r.logger.Debug("running external tool", "command", strings.Join(command, " "), "dir", dir)
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ToolError{
			Command:  command,
			ExitCode: code,
			Stderr:   lastLine(stderr.String()),
			Err:      err,
		}
	}
	return nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
