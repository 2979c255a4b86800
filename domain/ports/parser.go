package ports

import "github.com/makeitso-dev/mis/domain/entities"

// ManifestParser parses raw TOML bytes into domain types.
type ManifestParser interface {
	// Parse unmarshals manifest bytes into a PluginManifest struct.
	Parse(data []byte) (*entities.PluginManifest, error)
	// ParseProject unmarshals a project mis.toml.
	ParseProject(data []byte) (*entities.ProjectConfig, error)
	// ParseTable unmarshals a free-form table such as a plugin's config.toml.
	ParseTable(data []byte) (map[string]any, error)
}
