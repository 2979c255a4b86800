package deno_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/makeitso-dev/mis/application/permissions"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/infrastructure/deno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime resolves to a shell script standing in for deno.
type fakeRuntime struct {
	path string
}

func (f fakeRuntime) Resolve() (string, error) { return f.path, nil }

func (f fakeRuntime) Cache(context.Context, []string) error { return nil }

// writeFakeDeno records its arguments and a copy of the transport file into
// dir, then exits with code.
func writeFakeDeno(t *testing.T, dir string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtime is a shell script")
	}
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > '" + filepath.Join(dir, "args") + "'\n" +
		"for last; do :; done\n" +
		"cp \"$last\" '" + filepath.Join(dir, "context.json") + "'\n" +
		"exit " + strconv.Itoa(code) + "\n"
	path := filepath.Join(dir, "deno")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.ts")
	require.NoError(t, os.WriteFile(path, []byte("console.log('hi')\n"), 0o644))
	return path
}

func testContext() entities.ExecutionContext {
	m := &entities.PluginManifest{
		Plugin:   entities.PluginInfo{Name: "deploy", Version: "1.0.0"},
		Commands: map[string]entities.PluginCommand{"up": {Script: "main.ts"}},
	}
	return entities.NewExecutionContext(m, "up", "/work/app", nil, nil, map[string]any{"env": "prod"}, false)
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPermissionArgs(t *testing.T) {
	t.Run("Sets are sorted and comma joined", func(t *testing.T) {
		p := entities.NewPermissionPolicy(entities.PolicySpec{
			Read:      []string{"./src", "./docs"},
			Write:     []string{"./out"},
			Network:   []string{"deno.land", "api.github.com"},
			Run:       []string{"git", "docker"},
			EnvAccess: true,
		})
		assert.Equal(t, []string{
			"--allow-read=./docs,./src",
			"--allow-write=./out",
			"--allow-env",
			"--allow-net=api.github.com,deno.land",
			"--allow-run=docker,git",
		}, deno.PermissionArgs(p, nil))
	})

	t.Run("Empty sets emit no flag", func(t *testing.T) {
		p := entities.NewPermissionPolicy(entities.PolicySpec{Read: []string{"."}})
		assert.Equal(t, []string{"--allow-read=."}, deno.PermissionArgs(p, nil))
		assert.Empty(t, deno.PermissionArgs(entities.NewPermissionPolicy(entities.PolicySpec{}), nil))
	})

	t.Run("Entries that would split the list are dropped", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		p := entities.NewPermissionPolicy(entities.PolicySpec{
			Network: []string{"evil.com,169.254.169.254", "api.github.com"},
			Read:    []string{"./a\n--allow-all"},
		})
		assert.Equal(t, []string{"--allow-net=api.github.com"}, deno.PermissionArgs(p, logger))
		assert.Contains(t, buf.String(), "level=WARN")
	})

	t.Run("Rejected run commands never reach the flags", func(t *testing.T) {
		var buf bytes.Buffer
		c := permissions.NewCompiler(permissions.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		p := c.Compile(permissions.SafeDefaults("/work/app"), "evil", &entities.DeclaredPermissions{RunCommands: []string{"rm -rf /"}}, "go", nil)

		for _, arg := range deno.NewLauncher().Args(p, "main.ts", "/tmp/ctx.json") {
			assert.False(t, strings.HasPrefix(arg, "--allow-run"), arg)
		}
	})
}

func TestLauncher_Launch(t *testing.T) {
	t.Run("Successful run hands off the context and cleans up", func(t *testing.T) {
		record := t.TempDir()
		tmp := t.TempDir()
		script := writeScript(t)
		l := deno.NewLauncher(
			deno.WithRuntime(fakeRuntime{path: writeFakeDeno(t, record, 0)}),
			deno.WithTempDir(tmp),
			deno.WithStdio(nil, &bytes.Buffer{}, &bytes.Buffer{}),
		)
		policy := entities.NewPermissionPolicy(entities.PolicySpec{Read: []string{"/work/app"}, Run: []string{"git"}})

		require.NoError(t, l.Launch(context.Background(), policy, script, testContext()))

		raw, err := os.ReadFile(filepath.Join(record, "args"))
		require.NoError(t, err)
		args := strings.Split(strings.TrimSpace(string(raw)), "\n")
		require.GreaterOrEqual(t, len(args), 5)
		transport := args[len(args)-1]

		assert.Equal(t, "run", args[0])
		assert.Equal(t, "--no-prompt", args[1])
		assert.Equal(t, script, args[len(args)-2])
		assert.Equal(t, tmp, filepath.Dir(transport))
		assert.Regexp(t, `^mis-context-\d+-[0-9a-f-]{36}\.json$`, filepath.Base(transport))
		reads := []string{"/work/app", transport}
		sort.Strings(reads)
		assert.Contains(t, args, "--allow-read="+strings.Join(reads, ","))
		assert.Contains(t, args, "--allow-run=git")
		assert.NotContains(t, args, "--allow-env")

		var doc map[string]any
		ctxRaw, err := os.ReadFile(filepath.Join(record, "context.json"))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(ctxRaw, &doc))
		for _, key := range []string{"manifest", "config", "project_variables", "plugin_args", "meta", "dry_run"} {
			assert.Contains(t, doc, key)
		}

		assert.NoFileExists(t, transport)
		assert.Empty(t, dirEntries(t, tmp))
	})

	t.Run("Non-zero exit is an execution error and still cleans up", func(t *testing.T) {
		record := t.TempDir()
		tmp := t.TempDir()
		l := deno.NewLauncher(
			deno.WithRuntime(fakeRuntime{path: writeFakeDeno(t, record, 3)}),
			deno.WithTempDir(tmp),
			deno.WithStdio(nil, &bytes.Buffer{}, &bytes.Buffer{}),
		)

		err := l.Launch(context.Background(), entities.NewPermissionPolicy(entities.PolicySpec{}), writeScript(t), testContext())

		var execErr *entities.ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, 3, execErr.ExitCode)
		assert.Equal(t, "deploy", execErr.Plugin)
		assert.Equal(t, "up", execErr.Command)
		assert.Empty(t, dirEntries(t, tmp))
	})

	t.Run("Missing script is reported before anything is written", func(t *testing.T) {
		tmp := t.TempDir()
		l := deno.NewLauncher(deno.WithRuntime(fakeRuntime{path: "/nonexistent/deno"}), deno.WithTempDir(tmp))

		err := l.Launch(context.Background(), entities.NewPermissionPolicy(entities.PolicySpec{}), filepath.Join(tmp, "missing.ts"), testContext())

		var notFound *entities.ScriptNotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Empty(t, dirEntries(t, tmp))
	})

	t.Run("Missing runtime is reported distinctly", func(t *testing.T) {
		tmp := t.TempDir()
		l := deno.NewLauncher(
			deno.WithRuntime(deno.NewRuntime("mis-test-no-such-runtime", nil)),
			deno.WithTempDir(tmp),
		)

		err := l.Launch(context.Background(), entities.NewPermissionPolicy(entities.PolicySpec{}), writeScript(t), testContext())

		var missing *entities.RuntimeNotFoundError
		assert.ErrorAs(t, err, &missing)
		assert.Empty(t, dirEntries(t, tmp))
	})

	t.Run("Invalid documents are refused without a transport file", func(t *testing.T) {
		tmp := t.TempDir()
		l := deno.NewLauncher(
			deno.WithRuntime(fakeRuntime{path: writeFakeDeno(t, t.TempDir(), 0)}),
			deno.WithTempDir(tmp),
			deno.WithDocumentValidator(rejectAll{}),
		)

		err := l.Launch(context.Background(), entities.NewPermissionPolicy(entities.PolicySpec{}), writeScript(t), testContext())
		assert.Error(t, err)
		assert.Empty(t, dirEntries(t, tmp))
	})
}

type rejectAll struct{}

func (rejectAll) Validate([]byte) error { return errors.New("nope") }
