package cli

import (
	"github.com/ozacod/zapi/internal/pkg/metrics"
	"github.com/spf13/cobra"
)

// BuildCmd creates the build command
func BuildCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build for a single target",
		Long:  "Run zig build for one target, the current platform unless --target is given. The artifact stays in zig-out/lib.",
		Example: `  zapi build                                  # Build for this machine
  zapi build --target x86_64-pc-windows-msvc  # Cross-compile one target
  zapi build --step napi --optimize ReleaseFast`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.pipeline(nil)
			if err != nil {
				return err
			}
			return p.Build(cmd.Context(), app.options(cmd))
		},
	}

	cmd.Flags().String("target", "", "Target triple (default: current platform)")
	addZigFlags(cmd)
	return cmd
}

// BuildArtifactsCmd creates the build-artifacts command
func BuildArtifactsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-artifacts",
		Short: "Build for all configured targets",
		Long:  "Build every target listed in zapi.targets, one after another, and move each artifact to <artifacts-dir>/<target>/. Stops at the first failure.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMetrics(cmd, func(rec *metrics.Recorder) error {
				p, err := app.pipeline(rec)
				if err != nil {
					return err
				}
				return p.BuildArtifacts(cmd.Context(), app.options(cmd))
			})
		},
	}

	addZigFlags(cmd)
	addArtifactsDirFlag(cmd, "Output directory for artifacts")
	addMetricsFlag(cmd)
	return cmd
}
