// Package deno launches plugin scripts under the Deno permission sandbox.
package deno

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/domain/ports"
)

var _ ports.Launcher = (*Launcher)(nil)

// DocumentValidator checks a serialized execution context before it is
// handed to a plugin.
type DocumentValidator interface {
	Validate(doc []byte) error
}

// Launcher spawns `deno run` for one plugin command at a time.
type Launcher struct {
	runtime   ports.Runtime
	tempDir   string
	logger    *slog.Logger
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	validator DocumentValidator
	noPrompt  bool
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithRuntime sets the runtime the launcher resolves its binary from.
func WithRuntime(r ports.Runtime) LauncherOption {
	return func(l *Launcher) {
		l.runtime = r
	}
}

// WithTempDir sets where transport files are written.
func WithTempDir(dir string) LauncherOption {
	return func(l *Launcher) {
		l.tempDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LauncherOption {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// WithStdio replaces the streams the plugin inherits.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) LauncherOption {
	return func(l *Launcher) {
		l.stdin = stdin
		l.stdout = stdout
		l.stderr = stderr
	}
}

// WithDocumentValidator validates every execution context before launch.
func WithDocumentValidator(v DocumentValidator) LauncherOption {
	return func(l *Launcher) {
		l.validator = v
	}
}

// WithPrompt lets Deno ask the user interactively for permissions the policy
// does not grant. Off by default.
func WithPrompt(enabled bool) LauncherOption {
	return func(l *Launcher) {
		l.noPrompt = !enabled
	}
}

// NewLauncher creates a launcher.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		tempDir:  os.TempDir(),
		logger:   slog.Default(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		noPrompt: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.runtime == nil {
		l.runtime = NewRuntime(DefaultBinary, l.logger)
	}
	return l
}

// Launch runs scriptPath under policy and blocks until the process exits.
// The transport file holding execCtx exists only for the duration of the
// call; it is removed on every return path.
func (l *Launcher) Launch(ctx context.Context, policy entities.PermissionPolicy, scriptPath string, execCtx entities.ExecutionContext) error {
	plugin, command := execCtx.Meta.Name, execCtx.Meta.Command

	if info, err := os.Stat(scriptPath); err != nil || info.IsDir() {
		return &entities.ScriptNotFoundError{Plugin: plugin, Script: scriptPath}
	}
	bin, err := l.runtime.Resolve()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(execCtx)
	if err != nil {
		return fmt.Errorf("encode execution context: %w", err)
	}
	if l.validator != nil {
		if err := l.validator.Validate(doc); err != nil {
			return fmt.Errorf("execution context: %w", err)
		}
	}

	transport, err := l.writeTransport(doc)
	if err != nil {
		return err
	}
	defer l.removeTransport(transport)

	args := l.Args(policy.WithRead(transport), scriptPath, transport)
	l.logger.Debug("launching plugin", "plugin", plugin, "command", command, "args", args)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &entities.ExecutionError{Plugin: plugin, Command: command, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return &entities.ExecutionError{Plugin: plugin, Command: command, ExitCode: -1, Err: err}
	}
	return nil
}

// Args builds the runtime argument vector: run, sandbox flags, the script,
// then the transport path as the script's only argument.
func (l *Launcher) Args(policy entities.PermissionPolicy, scriptPath, transport string) []string {
	args := []string{"run"}
	if l.noPrompt {
		args = append(args, "--no-prompt")
	}
	args = append(args, PermissionArgs(policy, l.logger)...)
	return append(args, scriptPath, transport)
}

func (l *Launcher) writeTransport(doc []byte) (string, error) {
	name := fmt.Sprintf("mis-context-%d-%s.json", os.Getpid(), uuid.NewString())
	path := filepath.Join(l.tempDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create transport file: %w", err)
	}
	_, werr := f.Write(doc)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		l.removeTransport(path)
		return "", fmt.Errorf("write transport file: %w", errors.Join(werr, cerr))
	}
	return path, nil
}

func (l *Launcher) removeTransport(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("failed to remove transport file", "path", path, "error", err)
	}
}
