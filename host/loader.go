// Package host loads plugin manifests and project configuration from disk.
package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"

	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/domain/ports"
	"github.com/makeitso-dev/mis/infrastructure/manifest"
)

const (
	// ManifestFile is the manifest file name inside a plugin directory.
	ManifestFile = "manifest.toml"
	// ConfigFile is the user-editable plugin config inside a plugin directory.
	ConfigFile = "config.toml"
	// ProjectFile is the project config inside the metadata directory.
	ProjectFile = "mis.toml"
)

// Loader reads and validates plugin manifests.
type Loader struct {
	parser   ports.ManifestParser
	validate *validator.Validate
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithParser replaces the TOML parser.
func WithParser(p ports.ManifestParser) LoaderOption {
	return func(l *Loader) {
		l.parser = p
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		parser:   manifest.NewTOMLParser(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
		_, err := semver.NewVersion(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("pluginname", func(fl validator.FieldLevel) bool {
		return validation.ValidatePluginName(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("scriptpath", func(fl validator.FieldLevel) bool {
		return validation.ValidateScriptPath(fl.Field().String()) == nil
	})
	return v
}

// LoadManifest parses and validates manifest bytes.
func (l *Loader) LoadManifest(data []byte) (*entities.PluginManifest, error) {
	m, err := l.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := l.validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, &entities.ManifestError{
				Field: fe.Namespace(),
				Err:   fmt.Errorf("failed %q check (value %v)", fe.Tag(), fe.Value()),
			}
		}
		return nil, &entities.ManifestError{Err: err}
	}
	return m, nil
}

// LoadManifestFile reads a manifest from path.
func (l *Loader) LoadManifestFile(path string) (*entities.PluginManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	m, err := l.LoadManifest(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return m, nil
}

// LoadPluginConfig returns the manifest's [user_config] defaults overlaid
// with the plugin directory's config.toml, if present.
func (l *Loader) LoadPluginConfig(pluginDir string, m *entities.PluginManifest) (map[string]any, error) {
	cfg := make(map[string]any, len(m.UserConfig))
	for k, v := range m.UserConfig {
		cfg[k] = v
	}

	path := filepath.Join(pluginDir, ConfigFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	table, err := l.parser.ParseTable(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	for k, v := range table {
		cfg[k] = v
	}
	return cfg, nil
}

// LoadProject reads metaDir/mis.toml. A missing file yields an empty config.
func (l *Loader) LoadProject(metaDir string) (*entities.ProjectConfig, error) {
	path := filepath.Join(metaDir, ProjectFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &entities.ProjectConfig{}, nil
	}
	if err != nil {
		return nil, &entities.ManifestError{Path: path, Err: err}
	}
	cfg, err := l.parser.ParseProject(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return cfg, nil
}

func withPath(err error, path string) error {
	var me *entities.ManifestError
	if errors.As(err, &me) && me.Path == "" {
		me.Path = path
	}
	return err
}
