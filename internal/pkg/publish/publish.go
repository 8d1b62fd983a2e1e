// Package publish runs `npm publish` for every target package and then for the
// root package.
//
// The root package goes last so that its optionalDependencies already exist
// on the registry when it is published. Publishing is irreversible, so a
// failure stops the run without attempting to undo earlier steps.
package publish

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ozacod/zapi/internal/pkg/console"
	"github.com/ozacod/zapi/internal/pkg/metrics"
	"github.com/ozacod/zapi/internal/pkg/runner"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/pkg/errors"
)

// RootPackage labels the root package in steps and metrics.
const RootPackage = "main package"

// PublishFailedError reports an npm publish that exited non-zero.
type PublishFailedError struct {
	Package  string
	ExitCode int
}

func (e *PublishFailedError) Error() string {
	return fmt.Sprintf("npm publish failed for %s with exit code %d", e.Package, e.ExitCode)
}

// Request describes one publish run.
type Request struct {
	Targets   []target.Target
	NpmDir    string   // relative to RootDir unless absolute
	RootDir   string   // root package directory
	DryRun    bool
	ExtraArgs []string // appended after "publish"
}

// Step is one planned npm invocation.
type Step struct {
	Package string
	Command runner.Command
}

// Plan lists the invocations of a run in order.
type Plan struct {
	Steps []Step
}

// Driver invokes the registry client.
type Driver struct {
	Runner  runner.Runner
	Client  string
	Log     *console.Logger
	Metrics *metrics.Recorder
}

// Plan computes the invocations for req without running anything.
func (d *Driver) Plan(req Request) Plan {
	args := append([]string{"publish"}, req.ExtraArgs...)

	npmDir := req.NpmDir
	if !filepath.IsAbs(npmDir) {
		npmDir = filepath.Join(req.RootDir, npmDir)
	}

	var plan Plan
	for _, t := range req.Targets {
		plan.Steps = append(plan.Steps, Step{
			Package: string(t),
			Command: runner.Command{Name: d.Client, Args: args, Dir: filepath.Join(npmDir, string(t))},
		})
	}
	plan.Steps = append(plan.Steps, Step{
		Package: RootPackage,
		Command: runner.Command{Name: d.Client, Args: args, Dir: req.RootDir},
	})
	return plan
}

// Publish runs, or in dry-run mode reports, every step of the plan.
func (d *Driver) Publish(ctx context.Context, req Request) (Plan, error) {
	plan := d.Plan(req)
	total := len(plan.Steps)

	if req.DryRun {
		d.Log.Info("[DRY RUN] Would publish %d target package(s) + main package", len(req.Targets))
		d.Log.Detail("Extra npm args: %s", extraArgs(req.ExtraArgs))
		for i, step := range plan.Steps {
			d.Log.Step(i+1, total, "Would publish %s", step.Package)
			d.Log.Detail("Directory: %s", step.Command.Dir)
			d.Metrics.Observe("publish", step.Package, metrics.ResultPlanned, 0)
		}
		d.Log.Success("[DRY RUN] %d package(s) would be published", total)
		return plan, nil
	}

	d.Log.Info("Publishing %d target package(s) + main package...", len(req.Targets))
	for i, step := range plan.Steps {
		d.Log.Step(i+1, total, "Publishing %s...", step.Package)

		start := time.Now()
		err := d.Runner.Run(ctx, step.Command)
		if err != nil {
			d.Metrics.Observe("publish", step.Package, metrics.ResultFailure, time.Since(start))
			var exitErr *runner.ExitError
			if errors.As(err, &exitErr) {
				return plan, errors.WithStack(&PublishFailedError{Package: step.Package, ExitCode: exitErr.Code})
			}
			return plan, err
		}
		d.Metrics.Observe("publish", step.Package, metrics.ResultSuccess, time.Since(start))
	}

	d.Log.Success("Published %d package(s) successfully!", total)
	return plan, nil
}

func extraArgs(args []string) string {
	if len(args) == 0 {
		return "(none)"
	}
	return strings.Join(args, " ")
}
