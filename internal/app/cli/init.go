package cli

import (
	"fmt"
	"strings"

	"github.com/ozacod/zapi/internal/app/cli/tui"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/spf13/cobra"
)

// InitCmd creates the init command
func InitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Add a zapi configuration to package.json",
		Long:  "Interactive wizard that asks for the binary name, build step, optimize mode and targets, and writes the \"zapi\" field of package.json. Existing fields are kept.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(app)
		},
	}
}

func runInit(app *App) error {
	pt := DetectProjectType(app.Dir)
	if pt == ProjectTypeUnknown {
		return fmt.Errorf("zapi init requires a package.json in %s; run `npm init` first", displayDir(app.Dir))
	}

	m, err := config.LoadManifest(app.Dir)
	if err != nil {
		return err
	}

	var preselect []string
	if pt == ProjectTypeZapi {
		for _, t := range configuredTargets(app.Dir) {
			preselect = append(preselect, string(t))
		}
	}
	if len(preselect) == 0 {
		if t, err := app.Host.Detect(); err == nil {
			preselect = []string{string(t)}
		}
	}

	wizard := app.InitWizard
	if wizard == nil {
		wizard = func(defaultName string, preselect []string) (*InitAnswers, error) {
			return runInitPrompts(app, defaultName, preselect)
		}
	}
	answers, err := wizard(defaultBinaryName(m.Name()), preselect)
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if answers == nil {
		return nil
	}

	targets, err := parseTargets(answers.Targets)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("at least one target must be selected")
	}
	optimize, err := target.ParseOptimize(answers.Optimize)
	if err != nil {
		return err
	}

	b := config.Build{BinaryName: answers.BinaryName, Targets: targets, Step: answers.Step, Optimize: optimize}
	if err := m.SetBuild(b); err != nil {
		return err
	}
	if err := m.Save(); err != nil {
		return err
	}

	app.Logger().Success("Wrote zapi configuration for %s with %d target(s) to package.json", b.BinaryName, len(targets))
	return nil
}

func runInitPrompts(app *App, defaultName string, preselect []string) (*InitAnswers, error) {
	cfg, err := tui.RunInitWizard(defaultName)
	if err != nil || cfg == nil {
		return nil, err
	}

	chosen, err := tui.RunTargetSelection(targetRows(app), preselect, "Select Build Targets")
	if err != nil || chosen == nil {
		return nil, err
	}

	return &InitAnswers{BinaryName: cfg.BinaryName, Step: cfg.Step, Optimize: cfg.Optimize, Targets: chosen}, nil
}

// defaultBinaryName derives a binary name from an npm package name:
// "@scope/my.addon" becomes "my_addon".
func defaultBinaryName(pkgName string) string {
	if i := strings.LastIndex(pkgName, "/"); i >= 0 {
		pkgName = pkgName[i+1:]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, pkgName)
}
