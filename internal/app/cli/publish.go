package cli

import (
	"fmt"
	"strings"

	"github.com/ozacod/zapi/internal/pkg/metrics"
	"github.com/spf13/cobra"
)

// PrepublishCmd creates the prepublish command
func PrepublishCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepublish",
		Short: "Prepare npm packages for publishing",
		Long: `Move built artifacts into <npm-dir>/<target>/, write a package.json and
README.md for every target package, and replace the root package's
optionalDependencies with the target packages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMetrics(cmd, func(rec *metrics.Recorder) error {
				p, err := app.pipeline(rec)
				if err != nil {
					return err
				}
				return p.Prepublish(cmd.Context(), app.options(cmd))
			})
		},
	}

	addArtifactsDirFlag(cmd, "Directory containing built artifacts")
	addNpmDirFlag(cmd, "Directory for npm packages")
	addMetricsFlag(cmd)
	return cmd
}

// PublishCmd creates the publish command
func PublishCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [-- <npm-args>...]",
		Short: "Publish all packages to npm",
		Long:  "Run npm publish in every target package directory, then in the root package. Arguments after -- are passed to every npm publish.",
		Example: `  zapi publish --dry-run
  zapi publish -- --access public --tag next`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				args, extra = args[:dash], args[dash:]
			}
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument(s): %s (pass npm arguments after --)", strings.Join(args, " "))
			}

			return withMetrics(cmd, func(rec *metrics.Recorder) error {
				p, err := app.pipeline(rec)
				if err != nil {
					return err
				}
				opts := app.options(cmd)
				opts.ExtraArgs = extra
				_, err = p.Publish(cmd.Context(), opts)
				return err
			})
		},
	}

	addNpmDirFlag(cmd, "Directory containing npm packages")
	cmd.Flags().Bool("dry-run", false, "Preview what would be published without publishing")
	addMetricsFlag(cmd)
	return cmd
}
