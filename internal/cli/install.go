package cli

import (
	"fmt"
	"io"

	"github.com/makeitso-dev/mis/application/plugin"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/spf13/cobra"
)

func addCmd(opts *globalOptions) *cobra.Command {
	var req plugin.AddRequest
	cmd := &cobra.Command{
		Use:   "add <plugin>...",
		Short: "Install plugins from the project's registries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			project, err := a.project()
			if err != nil {
				return err
			}
			req.Plugins = args
			summary, err := a.installer().Add(cmd.Context(), project, req)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			if n := summary.Count(entities.ResultFailed); n > 0 {
				return fmt.Errorf("%d of %d plugins failed to install", n, len(summary.Results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Registry, "registry", "", "Install from this git URL instead of the configured sources")
	cmd.Flags().BoolVarP(&req.Force, "force", "f", false, "Reinstall plugins that are already installed")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Show what would be installed")
	return cmd
}

func updateCmd(opts *globalOptions) *cobra.Command {
	var req plugin.UpdateRequest
	cmd := &cobra.Command{
		Use:   "update [plugin]",
		Short: "Refresh plugins from the registry they were installed from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Plugin = args[0]
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			project, err := a.project()
			if err != nil {
				return err
			}
			summary, err := a.installer().Update(cmd.Context(), project, req)
			printSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Show what would be updated")
	return cmd
}

func printSummary(w io.Writer, s entities.Summary) {
	if len(s.Results) == 0 {
		return
	}
	for _, r := range s.Results {
		label := r.Plugin
		if r.ToVersion != "" {
			label += " " + r.ToVersion
		}
		switch r.Status {
		case entities.ResultInstalled:
			fmt.Fprintf(w, "  installed  %s from %s\n", label, r.Registry)
		case entities.ResultUpdated:
			fmt.Fprintf(w, "  updated    %s: %s\n", r.Plugin, plugin.VersionChange(r.FromVersion, r.ToVersion))
		case entities.ResultPlanned:
			fmt.Fprintf(w, "  planned    %s from %s\n", label, r.Registry)
		case entities.ResultSkipped:
			fmt.Fprintf(w, "  skipped    %s (already installed)\n", r.Plugin)
		case entities.ResultFailed:
			fmt.Fprintf(w, "  failed     %s: %v\n", r.Plugin, r.Err)
		}
	}
	fmt.Fprintf(w, "%d installed, %d updated, %d planned, %d skipped, %d failed\n",
		s.Count(entities.ResultInstalled),
		s.Count(entities.ResultUpdated),
		s.Count(entities.ResultPlanned),
		s.Count(entities.ResultSkipped),
		s.Count(entities.ResultFailed),
	)
}
