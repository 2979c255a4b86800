package host_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// LoaderSuite tests the Loader against manifests and files on disk.
type LoaderSuite struct {
	suite.Suite
	loader *host.Loader
	dir    string
}

func (s *LoaderSuite) SetupTest() {
	s.loader = host.NewLoader()
	s.dir = s.T().TempDir()
}

func (s *LoaderSuite) TestValidManifest() {
	toml := `
[plugin]
name = "deploy"
version = "1.0.0"

[permissions]
network = ["api.github.com"]

[commands.up]
script = "up.ts"
`
	m, err := s.loader.LoadManifest([]byte(toml))
	s.Require().NoError(err)
	s.Equal("deploy", m.Plugin.Name)
	s.Equal([]string{"api.github.com"}, m.Permissions.Network)
	s.Equal([]string{"up"}, m.CommandNames())
}

func (s *LoaderSuite) TestInvalidVersion() {
	toml := `
[plugin]
name = "deploy"
version = "latest"

[commands.up]
script = "up.ts"
`
	_, err := s.loader.LoadManifest([]byte(toml))
	var me *entities.ManifestError
	s.Require().ErrorAs(err, &me)
	s.Contains(me.Field, "Version")
}

func (s *LoaderSuite) TestInvalidPluginName() {
	toml := `
[plugin]
name = "../escape"
version = "1.0.0"

[commands.up]
script = "up.ts"
`
	_, err := s.loader.LoadManifest([]byte(toml))
	s.Require().Error(err)
	s.Contains(err.Error(), "pluginname")
}

func (s *LoaderSuite) TestScriptOutsidePluginDir() {
	toml := `
[plugin]
name = "deploy"
version = "1.0.0"

[commands.up]
script = "../../outside.ts"
`
	_, err := s.loader.LoadManifest([]byte(toml))
	s.Require().Error(err)
	s.Contains(err.Error(), "scriptpath")
}

func (s *LoaderSuite) TestUnknownArgType() {
	toml := `
[plugin]
name = "deploy"
version = "1.0.0"

[commands.up]
script = "up.ts"

[commands.up.args.required.count]
type = "number"
`
	_, err := s.loader.LoadManifest([]byte(toml))
	s.Require().Error(err)
	s.Contains(err.Error(), "oneof")
}

func (s *LoaderSuite) TestManifestWithoutCommands() {
	_, err := s.loader.LoadManifest([]byte("[plugin]\nname = \"x\"\nversion = \"1.0.0\"\n"))
	s.Require().Error(err)
}

func (s *LoaderSuite) TestLoadManifestFileRecordsPath() {
	path := filepath.Join(s.dir, host.ManifestFile)
	s.Require().NoError(os.WriteFile(path, []byte("[plugin\n"), 0o644))

	_, err := s.loader.LoadManifestFile(path)
	var me *entities.ManifestError
	s.Require().ErrorAs(err, &me)
	s.Equal(path, me.Path)
}

func (s *LoaderSuite) TestPluginConfigOverlaysDefaults() {
	m := &entities.PluginManifest{UserConfig: map[string]any{"region": "us-east-1", "retries": int64(3)}}
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, host.ConfigFile), []byte("region = \"eu-west-1\"\n"), 0o644))

	cfg, err := s.loader.LoadPluginConfig(s.dir, m)
	s.Require().NoError(err)
	s.Equal("eu-west-1", cfg["region"])
	s.Equal(int64(3), cfg["retries"])
	s.Equal("us-east-1", m.UserConfig["region"])
}

func (s *LoaderSuite) TestMissingProjectFileIsEmpty() {
	cfg, err := s.loader.LoadProject(s.dir)
	s.Require().NoError(err)
	s.Empty(cfg.Registry.Sources)
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func TestLoader_MissingConfigFile(t *testing.T) {
	loader := host.NewLoader()
	cfg, err := loader.LoadPluginConfig(t.TempDir(), &entities.PluginManifest{})
	require.NoError(t, err)
	assert.Empty(t, cfg)
}
