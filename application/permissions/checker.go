package permissions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/makeitso-dev/mis/domain/entities"
)

// Checker answers whether a compiled policy covers an access, using the
// runtime's semantics: path grants are recursive, a host without a port
// allows every port.
type Checker struct {
	policies map[string]entities.PermissionPolicy
	cwd      string // Working directory for resolving relative paths
}

// CheckerOption configures a Checker.
type CheckerOption func(*checkerConfig)

type checkerConfig struct {
	cwd string
}

// WithWorkingDirectory sets the directory relative grants and requests are
// resolved against.
func WithWorkingDirectory(cwd string) CheckerOption {
	return func(c *checkerConfig) {
		c.cwd = cwd
	}
}

// NewChecker creates a checker over compiled policies keyed by plugin name.
func NewChecker(policies map[string]entities.PermissionPolicy, opts ...CheckerOption) *Checker {
	cfg := checkerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cwd == "" {
		cfg.cwd, _ = os.Getwd() // Best effort - relative paths then only match relative grants
	}
	return &Checker{policies: policies, cwd: cfg.cwd}
}

// Check dispatches on the request kind.
func (c *Checker) Check(plugin string, req entities.AccessRequest) error {
	switch req.Kind {
	case entities.AccessRead, entities.AccessWrite:
		return c.CheckFileSystem(plugin, req.Kind, req.Target)
	case entities.AccessNetwork:
		return c.CheckNetwork(plugin, req.Target)
	case entities.AccessRun:
		return c.CheckExec(plugin, req.Target)
	case entities.AccessEnv:
		return c.CheckEnvironment(plugin)
	default:
		return fmt.Errorf("unknown access kind %q", req.Kind)
	}
}

// CheckFileSystem checks a read or write of path.
func (c *Checker) CheckFileSystem(plugin string, kind entities.AccessKind, path string) error {
	policy, ok := c.policies[plugin]
	if !ok {
		return fmt.Errorf("no policy compiled for plugin %s", plugin)
	}

	grants := policy.Read()
	if kind == entities.AccessWrite {
		grants = policy.Write()
	}
	target := c.abs(path)
	for _, g := range grants {
		if within(target, c.abs(g)) {
			return nil
		}
	}
	return fmt.Errorf("filesystem capability denied: %s %s", kind, path)
}

// CheckNetwork checks a connection to host, optionally host:port.
func (c *Checker) CheckNetwork(plugin, host string) error {
	policy, ok := c.policies[plugin]
	if !ok {
		return fmt.Errorf("no policy compiled for plugin %s", plugin)
	}

	host = strings.ToLower(strings.TrimSpace(host))
	name := host
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[:i], ":") {
		name = host[:i]
	}
	if policy.CanConnect(host) || policy.CanConnect(name) {
		return nil
	}
	return fmt.Errorf("network capability denied: %s", host)
}

// CheckExec checks spawning command.
func (c *Checker) CheckExec(plugin, command string) error {
	policy, ok := c.policies[plugin]
	if !ok {
		return fmt.Errorf("no policy compiled for plugin %s", plugin)
	}

	if policy.CanRun(command) {
		return nil
	}
	return fmt.Errorf("exec capability denied: %s", command)
}

// CheckEnvironment checks environment access.
func (c *Checker) CheckEnvironment(plugin string) error {
	policy, ok := c.policies[plugin]
	if !ok {
		return fmt.Errorf("no policy compiled for plugin %s", plugin)
	}

	if policy.EnvAccess() {
		return nil
	}
	return fmt.Errorf("environment capability denied")
}

func (c *Checker) abs(p string) string {
	if filepath.IsAbs(p) || c.cwd == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(c.cwd, p)
}

func within(target, dir string) bool {
	if target == dir {
		return true
	}
	rel, err := filepath.Rel(dir, target)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
