// Package build runs `zig build` for one target.
package build

import (
	"context"
	"fmt"

	"github.com/ozacod/zapi/internal/pkg/runner"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/pkg/errors"
)

// Request describes one zig invocation.
type Request struct {
	Target   target.Target
	Optimize target.Optimize // empty leaves it to build.zig
	Step     string
	Dir      string // zig working directory
}

// BuildFailedError reports a zig build that ran and exited non-zero.
type BuildFailedError struct {
	Target   target.Target
	ExitCode int
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("zig build failed for %s with exit code %d", e.Target, e.ExitCode)
}

// Driver invokes the compiler.
type Driver struct {
	Runner   runner.Runner
	Compiler string
}

// Args returns the compiler arguments for req.
func Args(req Request) ([]string, error) {
	triple, err := req.Target.ZigTriple()
	if err != nil {
		return nil, err
	}
	args := []string{"build", req.Step, "-Dtarget=" + triple}
	if req.Optimize != "" {
		args = append(args, "-Doptimize="+string(req.Optimize))
	}
	return args, nil
}

// Build runs the compiler once and waits for it to exit.
func (d *Driver) Build(ctx context.Context, req Request) error {
	args, err := Args(req)
	if err != nil {
		return errors.WithStack(err)
	}

	err = d.Runner.Run(ctx, runner.Command{Name: d.Compiler, Args: args, Dir: req.Dir})
	if err == nil {
		return nil
	}

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		return errors.WithStack(&BuildFailedError{Target: req.Target, ExitCode: exitErr.Code})
	}
	return err
}
