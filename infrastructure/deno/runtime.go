package deno

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/domain/ports"
)

// DefaultBinary is looked up on PATH when no runtime path is configured.
const DefaultBinary = "deno"

var _ ports.Runtime = (*Runtime)(nil)

// Runtime locates the deno binary and pre-fetches remote modules.
type Runtime struct {
	binary string
	logger *slog.Logger
}

// NewRuntime creates a runtime for binary, a name on PATH or a file path.
func NewRuntime(binary string, logger *slog.Logger) *Runtime {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{binary: binary, logger: logger}
}

// Resolve returns the runtime's executable path.
func (r *Runtime) Resolve() (string, error) {
	path, err := exec.LookPath(r.binary)
	if err != nil {
		return "", &entities.RuntimeNotFoundError{Runtime: r.binary, Err: err}
	}
	return path, nil
}

// Cache runs `deno cache` over urls. Every URL must already have passed
// dependency validation.
func (r *Runtime) Cache(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	bin, err := r.Resolve()
	if err != nil {
		return err
	}

	r.logger.Debug("caching dependencies", "count", len(urls))
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append([]string{"cache"}, urls...)...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("deno cache failed: %w: %s", err, strings.TrimSpace(out.String()))
	}
	return nil
}
