package cli

import (
	"github.com/spf13/cobra"
)

const rootLong = `zapi - Build and publish Zig N-API packages

Cross-compiles a Zig N-API addon for every target declared in package.json,
wraps each binary in its own npm package and publishes them together with the
root package, which lists them as optionalDependencies.

Configuration:
  Add a "zapi" field to your package.json:
  {
    "zapi": {
      "binaryName": "my-addon",
      "targets": ["x86_64-unknown-linux-gnu", "aarch64-apple-darwin"],
      "step": "install"
    }
  }`

// RootCmd assembles the zapi command tree.
func RootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "zapi",
		Short:         "Build and publish Zig N-API packages",
		Long:          rootLong,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("zapi {{.Version}}\n")
	cmd.SetOut(app.Stdout)
	cmd.SetErr(app.Stderr)

	cmd.AddCommand(
		BuildCmd(app),
		BuildArtifactsCmd(app),
		PrepublishCmd(app),
		PublishCmd(app),
		TargetsCmd(app),
		InitCmd(app),
		ResolveCmd(app),
		ConfigCmd(app),
		VersionCmd(app),
	)
	return cmd
}

// VersionCmd prints the version, same as --version.
func VersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("zapi %s\n", app.Version)
		},
	}
}

func addZigFlags(cmd *cobra.Command) {
	cmd.Flags().String("optimize", "", "Optimization level: Debug, ReleaseSafe, ReleaseFast, ReleaseSmall")
	cmd.Flags().String("step", "", "Zig build step (default: zapi.step from package.json)")
	cmd.Flags().String("zig-cwd", ".", "Working directory for zig build")
}

func addArtifactsDirFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().String("artifacts-dir", "artifacts", usage)
}

func addNpmDirFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().String("npm-dir", "npm", usage)
}

func addMetricsFlag(cmd *cobra.Command) {
	cmd.Flags().String("metrics-file", "", "Write step timings in Prometheus text format to this file")
}
