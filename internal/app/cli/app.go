package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/ozacod/zapi/internal/pkg/console"
	"github.com/ozacod/zapi/internal/pkg/host"
	"github.com/ozacod/zapi/internal/pkg/metrics"
	"github.com/ozacod/zapi/internal/pkg/pipeline"
	"github.com/ozacod/zapi/internal/pkg/runner"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/spf13/cobra"
)

// App carries what every command shares. Tests replace the runner, the
// host detector, the streams and Dir.
type App struct {
	Version  string
	Dir      string // project directory, "." in normal use
	Runner   runner.Runner
	Host     pipeline.HostDetector
	Stdout   io.Writer
	Stderr   io.Writer
	Color    bool
	Progress io.Writer // nil hides progress bars

	// Interactive prompts; nil means the bubbletea programs in tui.
	SelectTargets func(current []string) ([]string, error)
	InitWizard    func(defaultName string, preselect []string) (*InitAnswers, error)
}

// InitAnswers are the values collected by `zapi init`.
type InitAnswers struct {
	BinaryName string
	Step       string
	Optimize   string
	Targets    []string
}

// NewApp wires the real process environment.
func NewApp(version string) *App {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	a := &App{
		Version: version,
		Dir:     ".",
		Runner:  runner.NewExec(),
		Host:    host.Default(),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Color:   console.SupportsColor(os.LookupEnv, tty),
	}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		a.Progress = os.Stderr
	}
	return a
}

// Logger returns a console logger over the app's streams.
func (a *App) Logger() *console.Logger {
	return console.NewWithOptions(a.Stdout, a.Stderr, a.Color)
}

func (a *App) pipeline(rec *metrics.Recorder) (*pipeline.Pipeline, error) {
	g, err := config.LoadGlobal()
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Runner:   a.Runner,
		Log:      a.Logger(),
		Host:     a.Host,
		Global:   *g,
		Metrics:  rec,
		Progress: a.Progress,
	}, nil
}

// options reads the pipeline flags a command defines. Directory flags left
// at their defaults stay empty so the global config can fill them in.
func (a *App) options(cmd *cobra.Command) pipeline.Options {
	f := cmd.Flags()
	o := pipeline.Options{Dir: a.Dir}

	o.ZigDir, _ = f.GetString("zig-cwd")
	o.Step, _ = f.GetString("step")
	o.Optimize, _ = f.GetString("optimize")
	o.Target, _ = f.GetString("target")
	o.DryRun, _ = f.GetBool("dry-run")
	if f.Changed("artifacts-dir") {
		o.ArtifactsDir, _ = f.GetString("artifacts-dir")
	}
	if f.Changed("npm-dir") {
		o.NpmDir, _ = f.GetString("npm-dir")
	}
	return o
}

// withMetrics runs fn with a recorder when --metrics-file is set and writes
// the file afterwards, also after a failed run.
func withMetrics(cmd *cobra.Command, fn func(rec *metrics.Recorder) error) error {
	path, _ := cmd.Flags().GetString("metrics-file")

	var rec *metrics.Recorder
	if path != "" {
		rec = metrics.New()
	}

	err := fn(rec)
	if werr := rec.WriteFile(path); werr != nil && err == nil {
		err = werr
	}
	return err
}
