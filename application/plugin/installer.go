package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/domain/ports"
	"github.com/makeitso-dev/mis/host"
)

// ErrNoRegistry means neither the command line nor mis.toml names a
// registry.
var ErrNoRegistry = errors.New("no registry sources configured; pass --registry or add [registry] sources to .makeitso/mis.toml")

// AddRequest selects plugins to install.
type AddRequest struct {
	Plugins  []string
	Registry string // Overrides the project's registry sources
	Force    bool
	DryRun   bool
}

// Installer copies plugins out of git registries into a project and
// refreshes them from the registry they came from.
type Installer struct {
	loader  *host.Loader
	fetcher ports.RegistryFetcher
	logger  *slog.Logger
	tempDir string
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithInstallerLogger sets the logger.
func WithInstallerLogger(l *slog.Logger) InstallerOption {
	return func(i *Installer) {
		i.logger = l
	}
}

// WithCloneDir sets the parent directory of temporary registry checkouts.
func WithCloneDir(dir string) InstallerOption {
	return func(i *Installer) {
		i.tempDir = dir
	}
}

// NewInstaller creates an installer.
func NewInstaller(loader *host.Loader, fetcher ports.RegistryFetcher, opts ...InstallerOption) *Installer {
	i := &Installer{
		loader:  loader,
		fetcher: fetcher,
		logger:  slog.Default(),
		tempDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// checkout is a cloned registry.
type checkout struct {
	url string
	dir string
}

// Add installs each requested plugin from the first registry that has it.
// Invalid names and rejected registry URLs abort before anything is
// cloned; per-plugin failures are reported in the summary.
func (i *Installer) Add(ctx context.Context, project Project, req AddRequest) (entities.Summary, error) {
	var summary entities.Summary
	if len(req.Plugins) == 0 {
		return summary, errors.New("no plugins named")
	}
	for _, name := range req.Plugins {
		if err := validation.ValidatePluginName(name); err != nil {
			return summary, err
		}
	}

	sources, err := i.sources(project, req.Registry)
	if err != nil {
		return summary, err
	}

	unlock, err := lockProject(ctx, project)
	if err != nil {
		return summary, err
	}
	defer unlock()

	workDir, err := os.MkdirTemp(i.tempDir, "mis-registry-*")
	if err != nil {
		return summary, fmt.Errorf("create clone directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	checkouts := i.cloneAll(ctx, sources, workDir)
	if len(checkouts) == 0 {
		return summary, fmt.Errorf("could not fetch any of %d registry sources", len(sources))
	}

	for _, name := range req.Plugins {
		summary.Results = append(summary.Results, i.addOne(project, name, checkouts, req))
	}
	return summary, nil
}

func (i *Installer) sources(project Project, override string) ([]string, error) {
	sources := []string{override}
	if override == "" {
		cfg, err := i.loader.LoadProject(project.MetaDir())
		if err != nil {
			return nil, err
		}
		sources = cfg.Registry.Sources
	}
	if len(sources) == 0 {
		return nil, ErrNoRegistry
	}
	for _, src := range sources {
		if err := validateRegistry(src); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

func (i *Installer) cloneAll(ctx context.Context, sources []string, workDir string) []checkout {
	var out []checkout
	for n, src := range sources {
		dir := filepath.Join(workDir, strconv.Itoa(n))
		i.logger.Info("fetching registry", "url", src)
		if err := i.fetcher.Fetch(ctx, src, dir); err != nil {
			i.logger.Warn("skipping registry", "url", src, "error", err)
			continue
		}
		out = append(out, checkout{url: src, dir: dir})
	}
	return out
}

func (i *Installer) addOne(project Project, name string, checkouts []checkout, req AddRequest) entities.PluginResult {
	res := entities.PluginResult{Plugin: name}

	if project.IsInstalled(name) && !req.Force {
		i.logger.Warn("plugin already installed; use --force to reinstall", "plugin", name)
		res.Status = entities.ResultSkipped
		return res
	}

	var src string
	for _, c := range checkouts {
		dir, found, err := findInRegistry(c.dir, name)
		if err != nil {
			return failed(res, err)
		}
		if found {
			src, res.Registry = dir, c.url
			break
		}
	}
	if src == "" {
		return failed(res, &entities.PluginNotFoundError{Name: name})
	}

	m, err := i.loader.LoadManifestFile(filepath.Join(src, host.ManifestFile))
	if err != nil {
		return failed(res, err)
	}
	if _, err := ValidateDependencies(m); err != nil {
		return failed(res, err)
	}
	if m.Plugin.Name != name {
		i.logger.Warn("manifest name differs from directory name", "plugin", name, "manifest_name", m.Plugin.Name)
	}
	res.ToVersion = m.Plugin.Version

	if req.DryRun {
		i.logger.Info("would install plugin", "plugin", name, "version", m.Plugin.Version, "registry", res.Registry)
		res.Status = entities.ResultPlanned
		return res
	}

	config, err := readOptional(filepath.Join(project.PluginDir(name), host.ConfigFile))
	if err != nil {
		return failed(res, err)
	}
	if err := installDir(src, project.PluginDir(name), res.Registry, config); err != nil {
		return failed(res, err)
	}
	i.logger.Info("installed plugin", "plugin", name, "version", m.Plugin.Version)
	res.Status = entities.ResultInstalled
	return res
}

func validateRegistry(raw string) error {
	if _, err := validation.ValidateURL(raw, validation.PurposeRegistry); err != nil {
		return &entities.URLRejectedError{URL: raw, Purpose: validation.PurposeRegistry.String(), Err: err}
	}
	return nil
}

func failed(res entities.PluginResult, err error) entities.PluginResult {
	res.Status = entities.ResultFailed
	res.Err = err
	return res
}
