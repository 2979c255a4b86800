// Package plugin implements the run, add and update use cases over
// installed plugins.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/makeitso-dev/mis/application/permissions"
	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/domain/ports"
	"github.com/makeitso-dev/mis/host"
)

// Invocation is a plugin command resolved against a project, ready to
// launch.
type Invocation struct {
	Project  Project
	Plugin   string
	Command  string
	Dir      string
	Manifest *entities.PluginManifest
	Spec     entities.PluginCommand
	Policy   entities.PermissionPolicy
	Script   string
}

// RunRequest selects a command and carries its raw arguments.
type RunRequest struct {
	Plugin  string
	Command string
	Args    map[string]string
	DryRun  bool
}

// Runner resolves and executes plugin commands.
type Runner struct {
	loader   *host.Loader
	compiler *permissions.Compiler
	runtime  ports.Runtime
	launcher ports.Launcher
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner.
func NewRunner(loader *host.Loader, compiler *permissions.Compiler, runtime ports.Runtime, launcher ports.Launcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		loader:   loader,
		compiler: compiler,
		runtime:  runtime,
		launcher: launcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads the plugin and compiles the command's policy without
// running anything.
func (r *Runner) Resolve(project Project, plugin, command string) (*Invocation, error) {
	m, err := LoadInstalled(r.loader, project, plugin)
	if err != nil {
		return nil, err
	}
	spec, ok := m.Command(command)
	if !ok {
		return nil, &entities.CommandNotFoundError{Plugin: plugin, Command: command, Available: m.CommandNames()}
	}

	policy := r.compiler.Compile(
		permissions.SafeDefaults(project.Root),
		plugin, m.Permissions,
		command, spec.Permissions,
	)
	dir := project.PluginDir(plugin)
	return &Invocation{
		Project:  project,
		Plugin:   plugin,
		Command:  command,
		Dir:      dir,
		Manifest: m,
		Spec:     spec,
		Policy:   policy,
		Script:   filepath.Join(dir, filepath.FromSlash(spec.Script)),
	}, nil
}

// Run executes one plugin command.
func (r *Runner) Run(ctx context.Context, project Project, req RunRequest) error {
	inv, err := r.Resolve(project, req.Plugin, req.Command)
	if err != nil {
		return err
	}

	args, err := validation.ValidateArgs(req.Plugin, req.Command, inv.Spec.Args, req.Args)
	if err != nil {
		return err
	}

	deps, err := ValidateDependencies(inv.Manifest)
	if err != nil {
		return err
	}

	config, err := r.loader.LoadPluginConfig(inv.Dir, inv.Manifest)
	if err != nil {
		return err
	}
	projectCfg, err := r.loader.LoadProject(project.MetaDir())
	if err != nil {
		return err
	}

	if err := r.runtime.Cache(ctx, deps); err != nil {
		return err
	}

	r.logger.Debug("compiled policy", "plugin", req.Plugin, "command", req.Command, "policy", inv.Policy.String())
	execCtx := entities.NewExecutionContext(inv.Manifest, req.Command, project.Root, config, projectCfg.ProjectVariables, args, req.DryRun)
	return r.launcher.Launch(ctx, inv.Policy, inv.Script, execCtx)
}

// LoadInstalled loads the manifest of an installed plugin.
func LoadInstalled(loader *host.Loader, project Project, name string) (*entities.PluginManifest, error) {
	if err := validation.ValidatePluginName(name); err != nil {
		return nil, err
	}
	m, err := loader.LoadManifestFile(project.ManifestPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		available, _ := project.InstalledPlugins()
		return nil, &entities.PluginNotFoundError{Name: name, Available: available}
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ValidateDependencies checks every dependency URL of m and returns them
// sorted by dependency name. The first rejection aborts.
func ValidateDependencies(m *entities.PluginManifest) ([]string, error) {
	names := make([]string, 0, len(m.DenoDependencies))
	for name := range m.DenoDependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	urls := make([]string, 0, len(names))
	for _, name := range names {
		raw := m.DenoDependencies[name]
		u, err := validation.ValidateURL(raw, validation.PurposeDependency)
		if err != nil {
			return nil, &entities.URLRejectedError{
				URL:     raw,
				Purpose: validation.PurposeDependency.String(),
				Err:     fmt.Errorf("dependency %s: %w", name, err),
			}
		}
		urls = append(urls, u)
	}
	return urls, nil
}
