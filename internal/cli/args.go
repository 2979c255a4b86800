package cli

import (
	"fmt"
	"strings"

	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
)

// parseTarget splits "plugin:command". The command part is optional
// unless needCommand is set.
func parseTarget(s string, needCommand bool) (string, string, error) {
	name, command, _ := strings.Cut(s, ":")
	if err := validation.ValidatePluginName(name); err != nil {
		return "", "", err
	}
	if needCommand && command == "" {
		return "", "", fmt.Errorf("expected <plugin>:<command>, got %q", s)
	}
	return name, command, nil
}

// parsePluginArgs turns "--key value", "--key=value" and bare "--flag"
// into raw argument strings. A bare flag maps to the empty string.
func parsePluginArgs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") || arg == "--" {
			return nil, fmt.Errorf("unexpected argument %q: plugin arguments are written --key value", arg)
		}
		key := strings.TrimPrefix(arg, "--")
		var value string
		if k, v, ok := strings.Cut(key, "="); ok {
			key, value = k, v
		} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			value = args[i+1]
			i++
		}
		if key == "" {
			return nil, fmt.Errorf("empty argument name in %q", arg)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("argument --%s given more than once", key)
		}
		out[key] = value
	}
	return out, nil
}

// parseAccess reads "kind=target", e.g. "read=./src" or "net=api.github.com:443".
// env takes no target.
func parseAccess(s string) (entities.AccessRequest, error) {
	kind, target, _ := strings.Cut(s, "=")
	req := entities.AccessRequest{Kind: entities.AccessKind(kind), Target: target}
	switch req.Kind {
	case entities.AccessEnv:
		return req, nil
	case entities.AccessRead, entities.AccessWrite, entities.AccessNetwork, entities.AccessRun:
		if target == "" {
			return req, fmt.Errorf("%s needs a target: %s=<value>", kind, kind)
		}
		return req, nil
	default:
		return req, fmt.Errorf("unknown access kind %q (want read, write, net, run or env)", kind)
	}
}
