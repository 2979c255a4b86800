// Package manifest reads and rewrites the TOML files plugins and projects
// are described by.
package manifest

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/domain/ports"
)

var _ ports.ManifestParser = (*TOMLParser)(nil)

// TOMLParser implements ports.ManifestParser with go-toml. Unknown keys are
// ignored, so misplaced tables such as [plugin.permissions] have no effect.
type TOMLParser struct{}

// NewTOMLParser creates a parser.
func NewTOMLParser() *TOMLParser {
	return &TOMLParser{}
}

// Parse decodes a plugin manifest.
func (p *TOMLParser) Parse(data []byte) (*entities.PluginManifest, error) {
	var m entities.PluginManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, decodeError(err)
	}
	return &m, nil
}

// ParseProject decodes a project mis.toml.
func (p *TOMLParser) ParseProject(data []byte) (*entities.ProjectConfig, error) {
	var cfg entities.ProjectConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, decodeError(err)
	}
	return &cfg, nil
}

// ParseTable decodes an arbitrary table.
func (p *TOMLParser) ParseTable(data []byte) (map[string]any, error) {
	table := map[string]any{}
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, decodeError(err)
	}
	return table, nil
}

// SetRegistry rewrites a manifest with plugin.registry set. Comments and key
// order are not preserved.
func SetRegistry(data []byte, registry string) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, decodeError(err)
	}
	plugin, ok := doc["plugin"].(map[string]any)
	if !ok {
		return nil, &entities.ManifestError{Field: "plugin", Err: errors.New("missing [plugin] table")}
	}
	plugin["registry"] = registry
	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return out, nil
}

// EncodeProject renders a project config.
func EncodeProject(cfg *entities.ProjectConfig) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode project config: %w", err)
	}
	return out, nil
}

func decodeError(err error) error {
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		return &entities.ManifestError{Err: fmt.Errorf("line %d column %d: %s", row, col, de.String())}
	}
	return &entities.ManifestError{Err: err}
}
