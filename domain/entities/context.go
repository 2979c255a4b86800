package entities

// ExecutionContext is the document handed to a plugin process through the
// transport file. Its JSON shape is the contract with plugin scripts.
type ExecutionContext struct {
	Manifest         ManifestView   `json:"manifest"`
	Config           map[string]any `json:"config"`
	ProjectVariables map[string]any `json:"project_variables"`
	PluginArgs       map[string]any `json:"plugin_args"`
	Meta             RunMeta        `json:"meta"`
	DryRun           bool           `json:"dry_run"`
}

// ManifestView is the subset of a manifest a plugin gets to see. Commands
// are listed by name only.
type ManifestView struct {
	Plugin           PluginInfo        `json:"plugin"`
	Commands         []string          `json:"commands"`
	DenoDependencies map[string]string `json:"deno_dependencies"`
}

// RunMeta describes the invocation.
type RunMeta struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Command     string `json:"command"`
	ProjectRoot string `json:"project_root"`
}

// NewExecutionContext assembles the document for one invocation. Nil maps are
// replaced with empty ones so plugins always see objects.
func NewExecutionContext(m *PluginManifest, command, projectRoot string, config, projectVars, args map[string]any, dryRun bool) ExecutionContext {
	deps := m.DenoDependencies
	if deps == nil {
		deps = map[string]string{}
	}
	return ExecutionContext{
		Manifest: ManifestView{
			Plugin:           m.Plugin,
			Commands:         m.CommandNames(),
			DenoDependencies: deps,
		},
		Config:           orEmpty(config),
		ProjectVariables: orEmpty(projectVars),
		PluginArgs:       orEmpty(args),
		Meta: RunMeta{
			Name:        m.Plugin.Name,
			Version:     m.Plugin.Version,
			Description: m.Plugin.Description,
			Command:     command,
			ProjectRoot: projectRoot,
		},
		DryRun: dryRun,
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
