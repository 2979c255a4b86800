package plugin_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/makeitso-dev/mis/application/plugin"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/stretchr/testify/require"
)

// fakeFetcher writes a registry layout into the clone directory.
type fakeFetcher struct {
	mu    sync.Mutex
	files map[string]string // Relative path to content
	calls []string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, url, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.err != nil {
		return f.err
	}
	_ = os.RemoveAll(dir)
	for rel, content := range f.files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// fakeLauncher records the last launch.
type fakeLauncher struct {
	calls   int
	policy  entities.PermissionPolicy
	script  string
	execCtx entities.ExecutionContext
	err     error
}

func (f *fakeLauncher) Launch(_ context.Context, policy entities.PermissionPolicy, script string, execCtx entities.ExecutionContext) error {
	f.calls++
	f.policy, f.script, f.execCtx = policy, script, execCtx
	return f.err
}

// fakeRuntime records cached URLs.
type fakeRuntime struct {
	cached []string
}

func (f *fakeRuntime) Resolve() (string, error) { return "/usr/local/bin/deno", nil }

func (f *fakeRuntime) Cache(_ context.Context, urls []string) error {
	f.cached = append(f.cached, urls...)
	return nil
}

func newProject(t *testing.T) plugin.Project {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".makeitso", "plugins"), 0o755))
	return plugin.Project{Root: root}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const deployManifest = `
[plugin]
name = "deploy"
version = "1.0.0"
description = "Ship it"

[permissions]
run_commands = ["git", "rm -rf /"]
network = ["api.github.com"]

[commands.up]
description = "Bring the stack up"
script = "up.ts"

[commands.up.permissions]
run_commands = ["docker", "git"]

[commands.up.args.required.env]
type = "string"

[commands.up.args.optional.replicas]
type = "integer"
default = 2

[deno_dependencies]
path = "https://deno.land/std@0.200.0/path/mod.ts"

[user_config]
region = "us-east-1"
`
