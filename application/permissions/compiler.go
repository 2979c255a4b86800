// Package permissions compiles the permissions a plugin declares into the
// policy its process is launched under.
package permissions

import (
	"log/slog"

	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
)

// MetadataDir is the per-project directory mis keeps its state in.
const MetadataDir = ".makeitso"

// Scope identifies the manifest table a declaration came from. Command is
// empty for the plugin-level [permissions] table.
type Scope struct {
	Plugin  string
	Command string
}

func (s Scope) String() string {
	if s.Command == "" {
		return "plugin"
	}
	return "command"
}

// CompilerOption configures a Compiler.
type CompilerOption func(*compilerConfig)

type compilerConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger rejected entries are reported to.
func WithLogger(l *slog.Logger) CompilerOption {
	return func(c *compilerConfig) {
		c.logger = l
	}
}

// Compiler merges declared permissions into a PermissionPolicy. Rejected
// entries are logged and dropped; compilation itself never fails.
type Compiler struct {
	logger *slog.Logger
}

// NewCompiler creates a compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	cfg := compilerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Compiler{logger: cfg.logger}
}

// SafeDefaults is the policy every plugin starts from: read the project and
// its metadata directory, write the project, see the environment.
func SafeDefaults(projectRoot string) entities.PermissionPolicy {
	return entities.NewPermissionPolicy(entities.PolicySpec{
		Read:      []string{projectRoot, MetadataDir},
		Write:     []string{projectRoot},
		EnvAccess: true,
	})
}

// Compile applies the plugin-level declaration, then the command-level one,
// on top of defaults.
func (c *Compiler) Compile(defaults entities.PermissionPolicy, plugin string, pluginDecl *entities.DeclaredPermissions, command string, commandDecl *entities.DeclaredPermissions) entities.PermissionPolicy {
	policy := c.Apply(defaults, pluginDecl, Scope{Plugin: plugin})
	return c.Apply(policy, commandDecl, Scope{Plugin: plugin, Command: command})
}

// Apply is the single merge step: each declared entry that passes its
// validator is added to a copy of base, and env access is overridden only
// when the declaration states it.
func (c *Compiler) Apply(base entities.PermissionPolicy, decl *entities.DeclaredPermissions, scope Scope) entities.PermissionPolicy {
	if decl.IsEmpty() {
		return base
	}

	spec := base.Spec()
	spec.Read = append(spec.Read, c.accept(scope, "file_read", decl.FileRead, validation.ValidatePath)...)
	spec.Write = append(spec.Write, c.accept(scope, "file_write", decl.FileWrite, validation.ValidatePath)...)
	spec.Network = append(spec.Network, c.accept(scope, "network", decl.Network, validation.ValidateHost)...)
	spec.Run = append(spec.Run, c.accept(scope, "run_commands", decl.RunCommands, validation.ValidateCommand)...)
	if decl.EnvAccess != nil {
		spec.EnvAccess = *decl.EnvAccess
	}
	return entities.NewPermissionPolicy(spec)
}

func (c *Compiler) accept(scope Scope, field string, values []string, validate func(string) (string, error)) []string {
	accepted := make([]string, 0, len(values))
	for _, v := range values {
		normalized, err := validate(v)
		if err != nil {
			c.logger.Warn("dropping rejected permission",
				"plugin", scope.Plugin,
				"command", scope.Command,
				"scope", scope.String(),
				"field", field,
				"value", v,
				"error", err,
			)
			continue
		}
		accepted = append(accepted, normalized)
	}
	return accepted
}
