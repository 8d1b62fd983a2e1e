// Package pipeline sequences the zapi phases:
//
//	build-artifacts: for each target, zig build then stage the addon
//	prepublish:      move staged addons into npm packages, write manifests,
//	                 rewrite the root optionalDependencies
//	publish:         npm publish each target package, then the root
//
// Targets are processed one at a time in declaration order. A failed build,
// staging move or publish aborts the run; a missing artifact during
// prepublish only warns. Every phase can be re-run safely.
package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ozacod/zapi/internal/pkg/artifact"
	"github.com/ozacod/zapi/internal/pkg/build"
	"github.com/ozacod/zapi/internal/pkg/console"
	"github.com/ozacod/zapi/internal/pkg/metrics"
	"github.com/ozacod/zapi/internal/pkg/npm"
	"github.com/ozacod/zapi/internal/pkg/publish"
	"github.com/ozacod/zapi/internal/pkg/runner"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// HostDetector resolves the default target for single-target builds.
type HostDetector interface {
	Detect() (target.Target, error)
}

// Options are the per-invocation settings, mostly CLI flags. Relative
// directories are taken from Dir.
type Options struct {
	Dir          string // directory holding package.json
	ZigDir       string
	ArtifactsDir string
	NpmDir       string
	Step         string // --step, overrides zapi.step
	Optimize     string // --optimize, overrides zapi.optimize
	Target       string // --target for single builds; empty means host
	DryRun       bool
	ExtraArgs    []string
}

// Pipeline carries the collaborators shared by all phases.
type Pipeline struct {
	Runner   runner.Runner
	Log      *console.Logger
	Host     HostDetector
	Global   config.GlobalConfig
	Metrics  *metrics.Recorder
	Progress io.Writer // progress bar output; nil disables the bar
}

func (p *Pipeline) global() config.GlobalConfig {
	return p.Global.WithDefaults()
}

func (p *Pipeline) builder() *build.Driver {
	return &build.Driver{Runner: p.Runner, Compiler: p.global().Zig}
}

func (o Options) withDefaults(g config.GlobalConfig) Options {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.ZigDir == "" {
		o.ZigDir = "."
	}
	if o.ArtifactsDir == "" {
		o.ArtifactsDir = g.ArtifactsDir
	}
	if o.NpmDir == "" {
		o.NpmDir = g.NpmDir
	}
	o.ZigDir = under(o.Dir, o.ZigDir)
	o.ArtifactsDir = under(o.Dir, o.ArtifactsDir)
	o.NpmDir = under(o.Dir, o.NpmDir)
	return o
}

// under resolves a relative path against the project directory.
func under(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Build compiles a single target without staging it. The target defaults to
// the host platform.
func (p *Pipeline) Build(ctx context.Context, opts Options) error {
	g := p.global()
	opts = opts.withDefaults(g)

	_, decl, err := config.Load(opts.Dir)
	if err != nil {
		return err
	}
	step, err := config.ResolveStep(opts.Step, decl)
	if err != nil {
		return err
	}
	optimize, err := config.ResolveOptimize(opts.Optimize, decl, &p.Global)
	if err != nil {
		return err
	}
	t, err := p.resolveTarget(opts.Target)
	if err != nil {
		return err
	}

	p.Log.Info("Building for %s...", t)
	err = p.Metrics.Time("build", string(t), func() error {
		return p.builder().Build(ctx, build.Request{Target: t, Optimize: optimize, Step: step, Dir: opts.ZigDir})
	})
	if err != nil {
		return err
	}
	p.Log.Success("Build complete for %s", t)
	return nil
}

func (p *Pipeline) resolveTarget(flag string) (target.Target, error) {
	if flag != "" {
		t, err := target.Parse(flag)
		return t, errors.WithStack(err)
	}
	t, err := p.Host.Detect()
	return t, errors.WithStack(err)
}

// BuildArtifacts builds every configured target and stages its addon.
func (p *Pipeline) BuildArtifacts(ctx context.Context, opts Options) error {
	g := p.global()
	opts = opts.withDefaults(g)

	_, decl, err := config.Load(opts.Dir)
	if err != nil {
		return err
	}
	optimize, err := config.ResolveOptimize(opts.Optimize, decl, &p.Global)
	if err != nil {
		return err
	}
	step, err := config.ResolveStep(opts.Step, decl)
	if err != nil {
		return err
	}

	total := len(decl.Targets)
	p.Log.Info("Building %s for %d target(s)...", decl.BinaryName, total)

	builder := p.builder()
	for i, t := range decl.Targets {
		p.Log.Step(i+1, total, "Building for %s...", t)

		err := p.Metrics.Time("build", string(t), func() error {
			return builder.Build(ctx, build.Request{Target: t, Optimize: optimize, Step: step, Dir: opts.ZigDir})
		})
		if err != nil {
			return err
		}

		p.Log.Detail("Moving artifact to %s", filepath.Join(opts.ArtifactsDir, string(t)))
		err = p.Metrics.Time("stage", string(t), func() error {
			_, err := artifact.Stage(t, decl.BinaryName, opts.ZigDir, opts.ArtifactsDir)
			return err
		})
		if err != nil {
			return err
		}
	}

	p.Log.Success("Built %d artifact(s) to %s/", total, opts.ArtifactsDir)
	return nil
}

// Prepublish turns staged artifacts into npm packages and points the root
// package's optionalDependencies at them. The root package.json is written
// once, after every target package is in place.
func (p *Pipeline) Prepublish(ctx context.Context, opts Options) error {
	g := p.global()
	opts = opts.withDefaults(g)

	root, decl, err := config.Load(opts.Dir)
	if err != nil {
		return err
	}
	if err := root.RequireIdentity(); err != nil {
		return err
	}

	p.Log.Info("Preparing %s@%s for publishing...", root.Name(), root.Version())

	for _, t := range decl.Targets {
		dir := filepath.Join(opts.NpmDir, string(t))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	if err := p.packageArtifacts(ctx, decl, opts); err != nil {
		return err
	}

	p.Log.Info("Generating target package.json files...")
	for _, t := range decl.Targets {
		var path string
		err := p.Metrics.Time("manifest", string(t), func() error {
			var err error
			path, err = npm.WriteTargetPackage(t, root, decl, opts.NpmDir)
			return err
		})
		if err != nil {
			return err
		}
		p.Log.Detail("Created %s", path)
	}

	p.Log.Info("Updating package.json with optionalDependencies...")
	if _, err := npm.RewriteOptionalDependencies(root, decl); err != nil {
		return err
	}
	if err := root.Save(); err != nil {
		return err
	}

	p.Log.Success("Prepared %d target package(s) in %s/", len(decl.Targets), opts.NpmDir)
	return nil
}

func (p *Pipeline) packageArtifacts(ctx context.Context, decl *config.Build, opts Options) error {
	p.Log.Info("Moving artifacts to npm packages...")

	bar := p.progressBar(len(decl.Targets), "packaging")
	defer bar.Close()

	for _, t := range decl.Targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		dst, err := artifact.Package(t, decl.BinaryName, opts.ArtifactsDir, opts.NpmDir)
		var missing *artifact.MissingError
		switch {
		case errors.As(err, &missing):
			p.Metrics.Observe("package", string(t), metrics.ResultSkipped, time.Since(start))
			p.Log.Warn("Artifact not found: %s", missing.Path)
		case err != nil:
			p.Metrics.Observe("package", string(t), metrics.ResultFailure, time.Since(start))
			return err
		default:
			p.Metrics.Observe("package", string(t), metrics.ResultSuccess, time.Since(start))
			p.Log.Detail("%s → %s", t, dst)
		}
		_ = bar.Add(1)
	}
	return nil
}

func (p *Pipeline) progressBar(total int, description string) *progressbar.ProgressBar {
	w := p.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Publish publishes every target package and then the root package.
func (p *Pipeline) Publish(ctx context.Context, opts Options) (publish.Plan, error) {
	g := p.global()
	opts = opts.withDefaults(g)

	_, decl, err := config.Load(opts.Dir)
	if err != nil {
		return publish.Plan{}, err
	}

	rootDir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return publish.Plan{}, errors.WithStack(err)
	}
	npmDir, err := filepath.Abs(opts.NpmDir)
	if err != nil {
		return publish.Plan{}, errors.WithStack(err)
	}

	d := &publish.Driver{Runner: p.Runner, Client: g.Npm, Log: p.Log, Metrics: p.Metrics}
	return d.Publish(ctx, publish.Request{
		Targets:   decl.Targets,
		NpmDir:    npmDir,
		RootDir:   rootDir,
		DryRun:    opts.DryRun,
		ExtraArgs: opts.ExtraArgs,
	})
}
