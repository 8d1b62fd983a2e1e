// Package runner spawns external tools (zig, npm, ldd) for the pipeline.
//
// The pipeline only ever talks to the Runner interface so tests can swap in
// a Func that records invocations instead of launching processes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Command describes one subprocess invocation.
type Command struct {
	Name string   // executable, resolved through PATH
	Args []string // arguments after the executable
	Dir  string   // working directory; empty means the current one
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner runs a command to completion.
//
// Run returns nil on a zero exit status, an *ExitError when the process ran
// and exited non-zero, and a *SpawnError when it could not be started. When
// ctx ends first the returned error wraps ctx.Err().
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// Func adapts a plain function to the Runner interface.
type Func func(ctx context.Context, cmd Command) error

func (f Func) Run(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// ExitError reports a non-zero exit status.
type ExitError struct {
	Command Command
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command.Name, e.Code)
}

// SpawnError reports that a tool could not be launched at all.
type SpawnError struct {
	Tool string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Tool, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Exec runs commands as real subprocesses. Child processes inherit the
// environment and, unless overridden, the standard streams of zapi itself.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec wired to the process's own stdio.
func NewExec() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *Exec) Run(ctx context.Context, cmd Command) error {
	slog.Debug("spawn", "cmd", cmd.String(), "dir", cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = os.Environ()
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	if err := c.Run(); err != nil {
		// A child killed by cancellation reports exit code -1.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pkgerrors.Wrapf(ctxErr, "%s interrupted", cmd.Name)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return pkgerrors.WithStack(&ExitError{Command: cmd, Code: exitErr.ExitCode()})
		}
		return pkgerrors.WithStack(&SpawnError{Tool: cmd.Name, Err: err})
	}
	return nil
}
