package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRejected is matched by every validator rejection via errors.Is.
var ErrRejected = errors.New("rejected")

// RejectionError is returned when a validator refuses an input.
type RejectionError struct {
	Kind   string // "path", "host", "command", "url"
	Input  string // Raw input as received
	Reason string // Why it was refused
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s %q rejected: %s", e.Kind, e.Input, e.Reason)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// URLRejectedError is a hard failure raised before any clone or fetch.
type URLRejectedError struct {
	URL     string
	Purpose string // "registry" or "dependency"
	Err     error  // Underlying rejection
}

func (e *URLRejectedError) Error() string {
	return fmt.Sprintf("refusing %s URL %q: %v", e.Purpose, e.URL, e.Err)
}

func (e *URLRejectedError) Unwrap() error {
	return e.Err
}

func (e *URLRejectedError) Hint() string {
	return "use an https URL (or ssh/git for registries) that points at a public host"
}

// ScriptNotFoundError means the command's script is missing from the plugin.
type ScriptNotFoundError struct {
	Plugin string
	Script string // Path as resolved on disk
}

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("plugin %s: script not found: %s", e.Plugin, e.Script)
}

func (e *ScriptNotFoundError) Hint() string {
	return fmt.Sprintf("reinstall the plugin with `mis add %s --force` or fix the script path in its manifest", e.Plugin)
}

// RuntimeNotFoundError means the sandbox runtime binary is not installed.
type RuntimeNotFoundError struct {
	Runtime string
	Err     error
}

func (e *RuntimeNotFoundError) Error() string {
	return fmt.Sprintf("runtime %q not found: %v", e.Runtime, e.Err)
}

func (e *RuntimeNotFoundError) Unwrap() error {
	return e.Err
}

func (e *RuntimeNotFoundError) Hint() string {
	return "install Deno from https://deno.land or point --runtime at the deno binary"
}

// ExecutionError means the plugin process ran and failed, or could not be
// started after all preconditions held.
type ExecutionError struct {
	Plugin   string
	Command  string
	ExitCode int   // -1 if the process never produced an exit status
	Err      error // Underlying error
}

func (e *ExecutionError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("plugin %s:%s exited with code %d", e.Plugin, e.Command, e.ExitCode)
	}
	return fmt.Sprintf("plugin %s:%s failed: %v", e.Plugin, e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Hint() string {
	return "check the plugin output above; rerun with --log-level debug to see the sandbox flags"
}

// ArgumentError lists every problem found in a command's arguments.
type ArgumentError struct {
	Plugin   string
	Command  string
	Problems []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s:%s: %s", e.Plugin, e.Command, strings.Join(e.Problems, "; "))
}

func (e *ArgumentError) Hint() string {
	return fmt.Sprintf("run `mis info %s:%s` to list the accepted arguments", e.Plugin, e.Command)
}

// ManifestError represents a manifest or config file that failed to load.
type ManifestError struct {
	Path  string // File path, empty when parsing raw bytes
	Field string // Field name that failed validation
	Err   error  // Underlying error
}

func (e *ManifestError) Error() string {
	where := e.Path
	if where == "" {
		where = "manifest"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %v", where, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// PluginNotFoundError means no installed plugin or registry has the name.
type PluginNotFoundError struct {
	Name      string
	Available []string
}

func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("plugin %q not found", e.Name)
}

func (e *PluginNotFoundError) Hint() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("install it with `mis add %s`", e.Name)
	}
	return "available: " + strings.Join(e.Available, ", ")
}

// CommandNotFoundError means the plugin has no such command.
type CommandNotFoundError struct {
	Plugin    string
	Command   string
	Available []string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("plugin %s has no command %q", e.Plugin, e.Command)
}

func (e *CommandNotFoundError) Hint() string {
	return "available commands: " + strings.Join(e.Available, ", ")
}

// ProjectNotFoundError means no .makeitso directory exists above Start.
type ProjectNotFoundError struct {
	Start string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("no .makeitso directory found in %s or any parent", e.Start)
}

func (e *ProjectNotFoundError) Hint() string {
	return "run `mis init` in the project root"
}

type hinter interface {
	Hint() string
}

// HintFor returns the remediation hint carried by err, or "".
func HintFor(err error) string {
	var h hinter
	if errors.As(err, &h) {
		return h.Hint()
	}
	return ""
}
