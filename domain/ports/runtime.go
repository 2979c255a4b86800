package ports

import (
	"context"

	"github.com/makeitso-dev/mis/domain/entities"
)

// Runtime is the sandboxing script runtime plugins execute under.
type Runtime interface {
	// Resolve returns the absolute path of the runtime binary.
	Resolve() (string, error)
	// Cache pre-fetches remote modules. Callers validate every URL first.
	Cache(ctx context.Context, urls []string) error
}

// Launcher starts one plugin process under a compiled policy and waits for it.
type Launcher interface {
	Launch(ctx context.Context, policy entities.PermissionPolicy, scriptPath string, execCtx entities.ExecutionContext) error
}
