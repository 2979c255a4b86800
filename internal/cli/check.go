package cli

import (
	"fmt"

	"github.com/makeitso-dev/mis/application/permissions"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/spf13/cobra"
)

func checkCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <plugin>:<command> <kind>=<target>...",
		Short: "Ask whether a command's sandbox would allow an operation",
		Example: `  mis check deploy:ship read=./dist net=api.github.com:443 run=git env
  mis check deploy:ship write=/etc/hosts`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, command, err := parseTarget(args[0], true)
			if err != nil {
				return err
			}
			requests := make([]entities.AccessRequest, 0, len(args)-1)
			for _, raw := range args[1:] {
				req, err := parseAccess(raw)
				if err != nil {
					return err
				}
				requests = append(requests, req)
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
			inv, err := runner.Resolve(project, name, command)
			if err != nil {
				return err
			}

			checker := permissions.NewChecker(
				map[string]entities.PermissionPolicy{name: inv.Policy},
				permissions.WithWorkingDirectory(project.Root),
			)
			denied := 0
			out := cmd.OutOrStdout()
			for _, req := range requests {
				if err := checker.Check(name, req); err != nil {
					denied++
					fmt.Fprintf(out, "deny   %s %s: %v\n", req.Kind, req.Target, err)
					continue
				}
				fmt.Fprintf(out, "allow  %s %s\n", req.Kind, req.Target)
			}
			if denied > 0 {
				return fmt.Errorf("%d of %d requests denied", denied, len(requests))
			}
			return nil
		},
	}
}
