package entities

import "sort"

// PluginManifest is the parsed form of a plugin's manifest.toml.
type PluginManifest struct {
	Plugin           PluginInfo               `toml:"plugin" json:"plugin" yaml:"plugin"`
	Permissions      *DeclaredPermissions     `toml:"permissions" json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Commands         map[string]PluginCommand `toml:"commands" json:"commands" yaml:"commands" validate:"required,min=1,dive"`
	DenoDependencies map[string]string        `toml:"deno_dependencies" json:"deno_dependencies,omitempty" yaml:"deno_dependencies,omitempty"`
	UserConfig       map[string]any           `toml:"user_config" json:"user_config,omitempty" yaml:"user_config,omitempty"`
}

// PluginInfo is the [plugin] table.
type PluginInfo struct {
	Name        string `toml:"name" json:"name" yaml:"name" validate:"required,pluginname"`
	Version     string `toml:"version" json:"version" yaml:"version" validate:"required,semver"`
	Description string `toml:"description" json:"description,omitempty" yaml:"description,omitempty"`
	// Registry is the git source the plugin was installed from. Written by
	// the installer, read back by the updater.
	Registry string `toml:"registry,omitempty" json:"registry,omitempty" yaml:"registry,omitempty"`
}

// PluginCommand is one [commands.<name>] table.
type PluginCommand struct {
	Description string               `toml:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Script      string               `toml:"script" json:"script" yaml:"script" validate:"required,scriptpath"`
	Permissions *DeclaredPermissions `toml:"permissions" json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Args        *CommandArgs         `toml:"args" json:"args,omitempty" yaml:"args,omitempty"`
}

// CommandArgs lists the arguments a command accepts.
type CommandArgs struct {
	Required map[string]ArgDefinition `toml:"required" json:"required,omitempty" yaml:"required,omitempty" validate:"dive"`
	Optional map[string]ArgDefinition `toml:"optional" json:"optional,omitempty" yaml:"optional,omitempty" validate:"dive"`
}

// ArgType names the value type of a command argument.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgBoolean ArgType = "boolean"
	ArgInteger ArgType = "integer"
	ArgFloat   ArgType = "float"
)

// ArgDefinition describes a single command argument.
type ArgDefinition struct {
	Description string  `toml:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Type        ArgType `toml:"type" json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=string boolean integer float"`
	Default     any     `toml:"default" json:"default,omitempty" yaml:"default,omitempty"`
}

// EffectiveType returns the declared type, defaulting to string.
func (a ArgDefinition) EffectiveType() ArgType {
	if a.Type == "" {
		return ArgString
	}
	return a.Type
}

// CommandNames returns the declared command names in lexical order.
func (m *PluginManifest) CommandNames() []string {
	names := make([]string, 0, len(m.Commands))
	for name := range m.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Command looks up a command by name.
func (m *PluginManifest) Command(name string) (PluginCommand, bool) {
	cmd, ok := m.Commands[name]
	return cmd, ok
}
