package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/makeitso-dev/mis/domain/entities"
)

// ValidateArgs checks raw command-line arguments against a command's
// declared arguments and returns them typed. Optional defaults are filled
// in. A command that declares no arguments accepts anything as strings.
func ValidateArgs(plugin, command string, def *entities.CommandArgs, raw map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	if def == nil || (len(def.Required) == 0 && len(def.Optional) == 0) {
		for k, v := range raw {
			out[k] = v
		}
		return out, nil
	}

	var problems []string

	for _, name := range sortedKeys(def.Required) {
		value, ok := raw[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing required argument --%s", name))
			continue
		}
		typed, err := coerce(value, def.Required[name].EffectiveType())
		if err != nil {
			problems = append(problems, fmt.Sprintf("--%s: %v", name, err))
			continue
		}
		out[name] = typed
	}

	for _, name := range sortedKeys(def.Optional) {
		arg := def.Optional[name]
		value, ok := raw[name]
		if !ok {
			if arg.Default == nil {
				continue
			}
			value = fmt.Sprint(arg.Default)
		}
		typed, err := coerce(value, arg.EffectiveType())
		if err != nil {
			problems = append(problems, fmt.Sprintf("--%s: %v", name, err))
			continue
		}
		out[name] = typed
	}

	known := make([]string, 0, len(def.Required)+len(def.Optional))
	known = append(known, sortedKeys(def.Required)...)
	known = append(known, sortedKeys(def.Optional)...)
	for _, name := range sortedKeys(raw) {
		if _, ok := def.Required[name]; ok {
			continue
		}
		if _, ok := def.Optional[name]; ok {
			continue
		}
		msg := fmt.Sprintf("unknown argument --%s", name)
		if s := suggest(name, known); s != "" {
			msg += fmt.Sprintf(" (did you mean --%s?)", s)
		}
		problems = append(problems, msg)
	}

	if len(problems) > 0 {
		return nil, &entities.ArgumentError{Plugin: plugin, Command: command, Problems: problems}
	}
	return out, nil
}

func coerce(value string, t entities.ArgType) (any, error) {
	switch t {
	case entities.ArgBoolean:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on", "":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("expected a boolean, got %q", value)
	case entities.ArgInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		return n, nil
	case entities.ArgFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", value)
		}
		return f, nil
	case entities.ArgString:
		return value, nil
	default:
		return nil, fmt.Errorf("unsupported argument type %q", t)
	}
}

// suggest returns the closest known name within an edit distance of 2.
func suggest(unknown string, known []string) string {
	best, bestDistance := "", 3
	for _, k := range known {
		if d := levenshtein(unknown, k); d < bestDistance {
			best, bestDistance = k, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
