package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/makeitso-dev/mis/application/permissions"
	"github.com/makeitso-dev/mis/application/plugin"
	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/host"
	"github.com/makeitso-dev/mis/infrastructure/manifest"
	"github.com/spf13/cobra"
)

func initCmd(opts *globalOptions) *cobra.Command {
	var registries []string
	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create .makeitso/ in the current directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(opts.dir)
			if err != nil {
				return err
			}
			name := filepath.Base(root)
			if len(args) == 1 {
				name = args[0]
			}
			if err := initProject(root, name, registries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s in %s\n", name, filepath.Join(root, permissions.MetadataDir))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&registries, "registry", nil, "Registry git URL to record (repeatable)")
	return cmd
}

func initProject(root, name string, registries []string) error {
	for _, r := range registries {
		if _, err := validation.ValidateURL(r, validation.PurposeRegistry); err != nil {
			return &entities.URLRejectedError{URL: r, Purpose: validation.PurposeRegistry.String(), Err: err}
		}
	}

	project := plugin.Project{Root: root}
	path := filepath.Join(project.MetaDir(), host.ProjectFile)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(project.PluginsDir(), 0o755); err != nil {
		return fmt.Errorf("create plugins directory: %w", err)
	}
	data, err := manifest.EncodeProject(&entities.ProjectConfig{
		Name:     name,
		Registry: entities.RegistryConfig{Sources: registries},
	})
	if err != nil {
		return err
	}
	return writeNew(path, data)
}

func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
