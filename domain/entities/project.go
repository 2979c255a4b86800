package entities

// ProjectConfig is the project-level .makeitso/mis.toml.
type ProjectConfig struct {
	Name             string         `toml:"name" json:"name,omitempty"`
	Registry         RegistryConfig `toml:"registry" json:"registry"`
	ProjectVariables map[string]any `toml:"project_variables" json:"project_variables,omitempty"`
}

// RegistryConfig lists the git registries plugins are installed from.
type RegistryConfig struct {
	Sources []string `toml:"sources" json:"sources,omitempty"`
}
