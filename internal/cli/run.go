package cli

import (
	"errors"

	"github.com/makeitso-dev/mis/application/plugin"
	"github.com/spf13/cobra"
)

func runCmd(opts *globalOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run <plugin>:<command> [-- --key value ...]",
		Short: "Run a plugin command in the sandbox",
		Example: `  mis run deploy:ship -- --env production --verbose
  mis run deploy:ship --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dash := cmd.ArgsLenAtDash(); dash > 1 || (dash == -1 && len(args) > 1) {
				return errors.New("plugin arguments must follow --")
			}
			name, command, err := parseTarget(args[0], true)
			if err != nil {
				return err
			}
			raw, err := parsePluginArgs(args[1:])
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			project, err := a.project()
			if err != nil {
				return err
			}
			runner, err := a.runner()
			if err != nil {
				return err
			}
			return runner.Run(cmd.Context(), project, plugin.RunRequest{
				Plugin:  name,
				Command: command,
				Args:    raw,
				DryRun:  dryRun,
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Tell the plugin to plan without making changes")
	return cmd
}
