package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/host"
)

// UpdateRequest selects plugins to update. An empty Plugin means all
// installed plugins.
type UpdateRequest struct {
	Plugin string
	DryRun bool
}

// Update re-fetches plugins from the registry recorded in their manifest.
// config.toml survives the update. In single-plugin mode a failure is also
// returned as the error; in all-plugins mode failures only appear in the
// summary and the batch continues.
func (i *Installer) Update(ctx context.Context, project Project, req UpdateRequest) (entities.Summary, error) {
	var summary entities.Summary

	names := []string{req.Plugin}
	if req.Plugin == "" {
		installed, err := project.InstalledPlugins()
		if err != nil {
			return summary, err
		}
		if len(installed) == 0 {
			i.logger.Info("no plugins installed")
			return summary, nil
		}
		names = installed
	}

	unlock, err := lockProject(ctx, project)
	if err != nil {
		return summary, err
	}
	defer unlock()

	for _, name := range names {
		res := i.updateOne(ctx, project, name, req.DryRun)
		if res.Status == entities.ResultFailed {
			i.logger.Error("update failed", "plugin", name, "error", res.Err)
		}
		summary.Results = append(summary.Results, res)
	}

	if req.Plugin != "" && summary.Failed() {
		return summary, summary.Results[0].Err
	}
	return summary, nil
}

func (i *Installer) updateOne(ctx context.Context, project Project, name string, dryRun bool) entities.PluginResult {
	res := entities.PluginResult{Plugin: name}

	current, err := LoadInstalled(i.loader, project, name)
	if err != nil {
		return failed(res, err)
	}
	res.FromVersion = current.Plugin.Version
	res.Registry = current.Plugin.Registry

	if res.Registry == "" {
		return failed(res, fmt.Errorf("plugin %s has no registry recorded; reinstall it with `mis add %s --force --registry <url>`", name, name))
	}
	if err := validateRegistry(res.Registry); err != nil {
		return failed(res, err)
	}

	if dryRun {
		i.logger.Info("would update plugin", "plugin", name, "registry", res.Registry)
		res.Status = entities.ResultPlanned
		return res
	}

	workDir, err := os.MkdirTemp(i.tempDir, "mis-update-*")
	if err != nil {
		return failed(res, fmt.Errorf("create clone directory: %w", err))
	}
	defer os.RemoveAll(workDir)

	if err := i.fetcher.Fetch(ctx, res.Registry, workDir); err != nil {
		return failed(res, err)
	}
	src, found, err := findInRegistry(workDir, name)
	if err != nil {
		return failed(res, err)
	}
	if !found {
		return failed(res, &entities.PluginNotFoundError{Name: name})
	}

	next, err := i.loader.LoadManifestFile(filepath.Join(src, host.ManifestFile))
	if err != nil {
		return failed(res, err)
	}
	if _, err := ValidateDependencies(next); err != nil {
		return failed(res, err)
	}
	res.ToVersion = next.Plugin.Version

	config, err := readOptional(filepath.Join(project.PluginDir(name), host.ConfigFile))
	if err != nil {
		return failed(res, err)
	}
	if err := installDir(src, project.PluginDir(name), res.Registry, config); err != nil {
		return failed(res, err)
	}

	i.logger.Info("updated plugin", "plugin", name, "change", VersionChange(res.FromVersion, res.ToVersion))
	res.Status = entities.ResultUpdated
	return res
}

// VersionChange describes the move from one version to another.
func VersionChange(from, to string) string {
	a, errA := semver.NewVersion(from)
	b, errB := semver.NewVersion(to)
	if err := errors.Join(errA, errB); err != nil {
		return fmt.Sprintf("%s -> %s", from, to)
	}
	switch a.Compare(b) {
	case -1:
		return fmt.Sprintf("upgraded %s -> %s", a, b)
	case 1:
		return fmt.Sprintf("downgraded %s -> %s", a, b)
	default:
		return fmt.Sprintf("reinstalled %s", a)
	}
}
