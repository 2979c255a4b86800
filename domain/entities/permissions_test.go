package entities_test

import (
	"testing"

	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestPermissionPolicy(t *testing.T) {
	t.Run("Accessors return sorted copies", func(t *testing.T) {
		p := entities.NewPermissionPolicy(entities.PolicySpec{
			Run: []string{"npm", "git", "docker"},
		})
		run := p.Run()
		assert.Equal(t, []string{"docker", "git", "npm"}, run)

		run[0] = "mutated"
		assert.Equal(t, []string{"docker", "git", "npm"}, p.Run())
	})

	t.Run("Duplicates collapse", func(t *testing.T) {
		p := entities.NewPermissionPolicy(entities.PolicySpec{Network: []string{"a.com", "a.com"}})
		assert.Equal(t, []string{"a.com"}, p.Network())
	})

	t.Run("WithRead leaves the receiver untouched", func(t *testing.T) {
		p := entities.NewPermissionPolicy(entities.PolicySpec{Read: []string{"."}})
		derived := p.WithRead("/tmp/ctx.json")

		assert.False(t, p.CanRead("/tmp/ctx.json"))
		assert.True(t, derived.CanRead("/tmp/ctx.json"))
		assert.True(t, derived.CanRead("."))
	})

	t.Run("Equal ignores insertion order", func(t *testing.T) {
		a := entities.NewPermissionPolicy(entities.PolicySpec{Read: []string{"a", "b"}, EnvAccess: true})
		b := entities.NewPermissionPolicy(entities.PolicySpec{Read: []string{"b", "a"}, EnvAccess: true})
		c := entities.NewPermissionPolicy(entities.PolicySpec{Read: []string{"b", "a"}})
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
	})
}

func TestDeclaredPermissions_IsEmpty(t *testing.T) {
	var nilDecl *entities.DeclaredPermissions
	assert.True(t, nilDecl.IsEmpty())
	assert.True(t, (&entities.DeclaredPermissions{}).IsEmpty())

	off := false
	assert.False(t, (&entities.DeclaredPermissions{EnvAccess: &off}).IsEmpty())
}

func TestNewExecutionContext(t *testing.T) {
	m := &entities.PluginManifest{
		Plugin: entities.PluginInfo{Name: "deploy", Version: "1.2.0", Registry: "https://github.com/acme/plugins.git"},
		Commands: map[string]entities.PluginCommand{
			"up":   {Script: "./up.ts"},
			"down": {Script: "./down.ts"},
		},
	}

	ctx := entities.NewExecutionContext(m, "up", "/work/app", nil, nil, map[string]any{"force": true}, true)

	assert.Equal(t, []string{"down", "up"}, ctx.Manifest.Commands)
	assert.NotNil(t, ctx.Manifest.DenoDependencies)
	assert.NotNil(t, ctx.Config)
	assert.NotNil(t, ctx.ProjectVariables)
	assert.Equal(t, true, ctx.PluginArgs["force"])
	assert.Equal(t, "up", ctx.Meta.Command)
	assert.Equal(t, "/work/app", ctx.Meta.ProjectRoot)
	assert.Equal(t, "https://github.com/acme/plugins.git", ctx.Manifest.Plugin.Registry)
	assert.True(t, ctx.DryRun)
}
