package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/makeitso-dev/mis/application/plugin"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/infrastructure/deno"
	"github.com/spf13/cobra"
)

type pluginSummary struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Registry    string `json:"registry,omitempty" yaml:"registry,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

type commandSummary struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type pluginView struct {
	pluginSummary `yaml:",inline"`
	Commands      []commandSummary `json:"commands" yaml:"commands"`
}

type argumentView struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type permissionsView struct {
	Read    []string `json:"read" yaml:"read"`
	Write   []string `json:"write" yaml:"write"`
	Network []string `json:"net" yaml:"net"`
	Run     []string `json:"run" yaml:"run"`
	Env     bool     `json:"env" yaml:"env"`
}

type commandView struct {
	Plugin      string              `json:"plugin" yaml:"plugin"`
	Command     string              `json:"command" yaml:"command"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Script      string              `json:"script" yaml:"script"`
	Arguments   []argumentView      `json:"arguments" yaml:"arguments"`
	Permissions permissionsView     `json:"permissions" yaml:"permissions"`
	Flags       []string            `json:"flags" yaml:"flags"`
	Risk        entities.RiskReport `json:"risk" yaml:"risk"`
}

func infoCmd(opts *globalOptions) *cobra.Command {
	format := formatText
	cmd := &cobra.Command{
		Use:   "info [plugin[:command]]",
		Short: "List plugins, a plugin's commands, or a command's sandbox",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			project, err := a.project()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				return listPlugins(a, project, out, format)
			}
			name, command, err := parseTarget(args[0], false)
			if err != nil {
				return err
			}
			if command == "" {
				return showPlugin(a, project, name, out, format)
			}
			return showCommand(a, project, name, command, out, format)
		},
	}
	cmd.Flags().VarP(&format, "output", "o", "Output format (text, yaml, json)")
	return cmd
}

func listPlugins(a *app, project plugin.Project, out io.Writer, format outputFormat) error {
	names, err := project.InstalledPlugins()
	if err != nil {
		return err
	}
	plugins := make([]pluginSummary, 0, len(names))
	for _, name := range names {
		m, err := plugin.LoadInstalled(a.loader, project, name)
		if err != nil {
			a.logger.Warn("could not load plugin manifest", "plugin", name, "error", err)
			plugins = append(plugins, pluginSummary{Name: name, Error: err.Error()})
			continue
		}
		plugins = append(plugins, summarize(m))
	}

	return render(out, format, plugins, func(w io.Writer) error {
		if len(plugins) == 0 {
			_, err := fmt.Fprintln(w, "No plugins installed. Add one with `mis add <plugin>`.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVERSION\tDESCRIPTION")
		for _, p := range plugins {
			desc := p.Description
			if p.Error != "" {
				desc = "error: " + p.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Version, desc)
		}
		return tw.Flush()
	})
}

func showPlugin(a *app, project plugin.Project, name string, out io.Writer, format outputFormat) error {
	m, err := plugin.LoadInstalled(a.loader, project, name)
	if err != nil {
		return err
	}
	view := pluginView{pluginSummary: summarize(m)}
	for _, c := range m.CommandNames() {
		view.Commands = append(view.Commands, commandSummary{Name: c, Description: m.Commands[c].Description})
	}

	return render(out, format, view, func(w io.Writer) error {
		fmt.Fprintf(w, "%s %s\n", view.Name, view.Version)
		if view.Description != "" {
			fmt.Fprintf(w, "%s\n", view.Description)
		}
		if view.Registry != "" {
			fmt.Fprintf(w, "registry: %s\n", view.Registry)
		}
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COMMAND\tDESCRIPTION")
		for _, c := range view.Commands {
			fmt.Fprintf(tw, "%s:%s\t%s\n", view.Name, c.Name, c.Description)
		}
		return tw.Flush()
	})
}

func showCommand(a *app, project plugin.Project, name, command string, out io.Writer, format outputFormat) error {
	runner, err := a.runner()
	if err != nil {
		return err
	}
	inv, err := runner.Resolve(project, name, command)
	if err != nil {
		return err
	}
	view := describeCommand(inv, a)

	return render(out, format, view, func(w io.Writer) error {
		fmt.Fprintf(w, "%s:%s\n", view.Plugin, view.Command)
		if view.Description != "" {
			fmt.Fprintf(w, "%s\n", view.Description)
		}
		fmt.Fprintf(w, "script: %s\n\n", view.Script)

		if len(view.Arguments) > 0 {
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ARGUMENT\tTYPE\tREQUIRED\tDEFAULT\tDESCRIPTION")
			for _, arg := range view.Arguments {
				def := ""
				if arg.Default != nil {
					def = fmt.Sprint(arg.Default)
				}
				fmt.Fprintf(tw, "--%s\t%s\t%t\t%s\t%s\n", arg.Name, arg.Type, arg.Required, def, arg.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}

		p := view.Permissions
		fmt.Fprintf(w, "read:  %s\n", listOrNone(p.Read))
		fmt.Fprintf(w, "write: %s\n", listOrNone(p.Write))
		fmt.Fprintf(w, "net:   %s\n", listOrNone(p.Network))
		fmt.Fprintf(w, "run:   %s\n", listOrNone(p.Run))
		fmt.Fprintf(w, "env:   %t\n\n", p.Env)
		fmt.Fprintf(w, "flags: %s\n", strings.Join(view.Flags, " "))
		fmt.Fprintf(w, "risk:  %s\n", view.Risk.Level)
		for _, f := range view.Risk.RiskFactors {
			fmt.Fprintf(w, "  [%s] %s (%s)\n", f.Level, f.Description, f.Rule)
		}
		return nil
	})
}

func summarize(m *entities.PluginManifest) pluginSummary {
	return pluginSummary{
		Name:        m.Plugin.Name,
		Version:     m.Plugin.Version,
		Description: m.Plugin.Description,
		Registry:    m.Plugin.Registry,
	}
}

func describeCommand(inv *plugin.Invocation, a *app) commandView {
	policy := inv.Policy
	view := commandView{
		Plugin:      inv.Plugin,
		Command:     inv.Command,
		Description: inv.Spec.Description,
		Script:      inv.Spec.Script,
		Arguments:   arguments(inv.Spec.Args),
		Permissions: permissionsView{
			Read:    policy.Read(),
			Write:   policy.Write(),
			Network: policy.Network(),
			Run:     policy.Run(),
			Env:     policy.EnvAccess(),
		},
		Flags: deno.PermissionArgs(policy, a.logger),
		Risk:  entities.NewSimpleRiskAnalyzer().Analyze(policy),
	}
	return view
}

func arguments(def *entities.CommandArgs) []argumentView {
	if def == nil {
		return nil
	}
	var out []argumentView
	add := func(defs map[string]entities.ArgDefinition, required bool) {
		for name, d := range defs {
			out = append(out, argumentView{
				Name:        name,
				Type:        string(d.EffectiveType()),
				Required:    required,
				Default:     d.Default,
				Description: d.Description,
			})
		}
	}
	add(def.Required, true)
	add(def.Optional, false)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Required != out[j].Required {
			return out[i].Required
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
