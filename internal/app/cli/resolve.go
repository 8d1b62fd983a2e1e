package cli

import (
	"fmt"

	"github.com/ozacod/zapi/internal/pkg/npm"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/spf13/cobra"
)

// ResolveCmd creates the resolve command
func ResolveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [dir]",
		Short: "Show which addon a loader would use on this machine",
		Long: `Print the module a Node.js loader would require for the addon in dir
(default: the current directory): the local zig-out/lib/<binaryName>.node
when it exists, otherwise the target package for this platform.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := app.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			m, b, err := config.Load(dir)
			if err != nil {
				return err
			}
			res, err := npm.Resolve(dir, m, b, app.Host.Detect)
			if err != nil {
				return err
			}

			fmt.Fprintln(app.Stdout, res.String())
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log := app.Logger()
				if res.Local != "" {
					log.Detail("local build")
				} else {
					log.Detail("published package for %s", res.Target)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Explain where the module comes from")
	return cmd
}
