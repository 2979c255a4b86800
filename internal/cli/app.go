package cli

import (
	"io"
	"log/slog"

	"github.com/makeitso-dev/mis/application/permissions"
	"github.com/makeitso-dev/mis/application/plugin"
	"github.com/makeitso-dev/mis/application/schema"
	"github.com/makeitso-dev/mis/host"
	"github.com/makeitso-dev/mis/infrastructure/deno"
	"github.com/makeitso-dev/mis/infrastructure/git"
	"github.com/makeitso-dev/mis/internal/logging"
	"github.com/spf13/cobra"
)

// app holds the services one command invocation needs.
type app struct {
	opts   *globalOptions
	logger *slog.Logger
	loader *host.Loader
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	logger, err := logging.New(logging.Config{
		Level:  opts.logLevel,
		JSON:   opts.logJSON,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	return &app{
		opts:   opts,
		logger: logger,
		loader: host.NewLoader(),
		stdin:  cmd.InOrStdin(),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}, nil
}

func (a *app) project() (plugin.Project, error) {
	return plugin.FindProject(a.opts.dir)
}

func (a *app) runner() (*plugin.Runner, error) {
	validator, err := schema.NewContextValidator()
	if err != nil {
		return nil, err
	}
	runtime := deno.NewRuntime(a.opts.runtime, a.logger)
	launcher := deno.NewLauncher(
		deno.WithRuntime(runtime),
		deno.WithLogger(a.logger),
		deno.WithStdio(a.stdin, a.stdout, a.stderr),
		deno.WithDocumentValidator(validator),
	)
	compiler := permissions.NewCompiler(permissions.WithLogger(a.logger))
	return plugin.NewRunner(a.loader, compiler, runtime, launcher, plugin.WithRunnerLogger(a.logger)), nil
}

func (a *app) installer() *plugin.Installer {
	cloner := git.NewCloner(git.WithLogger(a.logger))
	return plugin.NewInstaller(a.loader, cloner, plugin.WithInstallerLogger(a.logger))
}
