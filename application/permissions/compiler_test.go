package permissions_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/makeitso-dev/mis/application/permissions"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func newCompiler(buf *bytes.Buffer) *permissions.Compiler {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return permissions.NewCompiler(permissions.WithLogger(logger))
}

func TestSafeDefaults(t *testing.T) {
	p := permissions.SafeDefaults("/work/app")
	assert.Equal(t, []string{".makeitso", "/work/app"}, p.Read())
	assert.Equal(t, []string{"/work/app"}, p.Write())
	assert.True(t, p.EnvAccess())
	assert.Empty(t, p.Network())
	assert.Empty(t, p.Run())
}

func TestCompiler_Compile(t *testing.T) {
	defaults := permissions.SafeDefaults("/work/app")

	t.Run("Plugin and command grants are unioned", func(t *testing.T) {
		var buf bytes.Buffer
		c := newCompiler(&buf)

		p := c.Compile(defaults,
			"deploy", &entities.DeclaredPermissions{RunCommands: []string{"git"}, Network: []string{"api.github.com"}},
			"up", &entities.DeclaredPermissions{RunCommands: []string{"docker", "git"}},
		)

		assert.Equal(t, []string{"docker", "git"}, p.Run())
		assert.Equal(t, []string{"api.github.com"}, p.Network())
		assert.Empty(t, buf.String())
	})

	t.Run("Rejected entries are dropped with a warning", func(t *testing.T) {
		var buf bytes.Buffer
		c := newCompiler(&buf)

		p := c.Compile(defaults,
			"evil", &entities.DeclaredPermissions{
				RunCommands: []string{"rm -rf /"},
				FileRead:    []string{"/etc/passwd", "./docs"},
				Network:     []string{"169.254.169.254", "API.GitHub.com"},
			},
			"go", nil,
		)

		assert.Empty(t, p.Run())
		assert.Equal(t, []string{"./docs", ".makeitso", "/work/app"}, p.Read())
		assert.Equal(t, []string{"api.github.com"}, p.Network())

		logs := buf.String()
		assert.Contains(t, logs, "level=WARN")
		assert.Contains(t, logs, "plugin=evil")
		assert.Contains(t, logs, "field=run_commands")
		assert.Contains(t, logs, `value="rm -rf /"`)
		assert.Contains(t, logs, "value=/etc/passwd")
	})

	t.Run("Comma-joined entries never reach the policy", func(t *testing.T) {
		var buf bytes.Buffer
		c := newCompiler(&buf)

		p := c.Compile(defaults,
			"evil", &entities.DeclaredPermissions{
				Network:     []string{"a.com,localhost", "api.github.com"},
				RunCommands: []string{"git,rm"},
				FileWrite:   []string{"./out,/etc"},
			},
			"go", nil,
		)

		assert.Equal(t, []string{"api.github.com"}, p.Network())
		assert.Empty(t, p.Run())
		assert.Equal(t, []string{"/work/app"}, p.Write())
		assert.False(t, p.CanConnect("a.com,localhost"))
		assert.Contains(t, buf.String(), "list separator")
	})

	t.Run("Env is overridden only when declared", func(t *testing.T) {
		var buf bytes.Buffer
		c := newCompiler(&buf)

		off := c.Compile(defaults, "p", &entities.DeclaredPermissions{EnvAccess: boolPtr(false)}, "c", nil)
		assert.False(t, off.EnvAccess())

		inherited := c.Compile(defaults, "p", &entities.DeclaredPermissions{EnvAccess: boolPtr(false)}, "c", &entities.DeclaredPermissions{RunCommands: []string{"git"}})
		assert.False(t, inherited.EnvAccess())

		back := c.Compile(defaults, "p", &entities.DeclaredPermissions{EnvAccess: boolPtr(false)}, "c", &entities.DeclaredPermissions{EnvAccess: boolPtr(true)})
		assert.True(t, back.EnvAccess())
	})

	t.Run("Compilation is deterministic", func(t *testing.T) {
		var buf bytes.Buffer
		c := newCompiler(&buf)

		a := c.Compile(defaults, "p", &entities.DeclaredPermissions{Network: []string{"a.com", "b.com"}, FileWrite: []string{"./x", "./y"}}, "c", nil)
		b := c.Compile(defaults, "p", &entities.DeclaredPermissions{Network: []string{"b.com", "a.com"}, FileWrite: []string{"./y", "./x"}}, "c", nil)
		assert.True(t, a.Equal(b))
		assert.Equal(t, a.String(), b.String())
	})

	t.Run("Base policy is never mutated", func(t *testing.T) {
		var buf bytes.Buffer
		c := newCompiler(&buf)

		_ = c.Apply(defaults, &entities.DeclaredPermissions{RunCommands: []string{"git"}}, permissions.Scope{Plugin: "p"})
		assert.Empty(t, defaults.Run())
	})
}
