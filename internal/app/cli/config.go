package cli

import (
	"fmt"

	"github.com/ozacod/zapi/pkg/config"
	"github.com/spf13/cobra"
)

// ConfigCmd creates the config command
func ConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the global zapi configuration",
		Long:  "Show the effective user-level defaults. Values in package.json and flags take precedence over them.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadGlobal()
			if err != nil {
				return err
			}
			eff := cfg.WithDefaults()
			for _, k := range eff.Keys() {
				v, _ := eff.Get(k)
				fmt.Fprintf(app.Stdout, "%s = %s\n", k, v)
			}
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a global configuration value",
		Example: `  zapi config set npm pnpm
  zapi config set optimize ReleaseSmall`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.LoadGlobal()
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.SaveGlobal(cfg); err != nil {
				return err
			}
			app.Logger().Success("Set %s = %s", args[0], args[1])
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the location of the global configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Stdout, path)
			return nil
		},
	}

	cmd.AddCommand(setCmd, pathCmd)
	return cmd
}
