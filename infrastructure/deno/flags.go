package deno

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/makeitso-dev/mis/domain/entities"
)

// PermissionArgs renders a policy as Deno permission flags. Each non-empty
// set becomes one flag with its sorted members joined by commas; empty sets
// produce no flag at all, which Deno treats as deny.
func PermissionArgs(policy entities.PermissionPolicy, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	var args []string
	add := func(flag string, values []string) {
		values = listSafe(flag, values, logger)
		if len(values) == 0 {
			return
		}
		args = append(args, flag+"="+strings.Join(values, ","))
	}

	add("--allow-read", policy.Read())
	add("--allow-write", policy.Write())
	if policy.EnvAccess() {
		args = append(args, "--allow-env")
	}
	add("--allow-net", policy.Network())
	add("--allow-run", policy.Run())
	return args
}

// listSafe drops entries that would split into extra list items or carry
// control characters into the argument vector.
func listSafe(flag string, values []string, logger *slog.Logger) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.Contains(v, ",") || strings.IndexFunc(v, unicode.IsControl) >= 0 {
			logger.Warn("dropping permission entry that cannot be expressed as a flag value", "flag", flag, "value", v)
			continue
		}
		out = append(out, v)
	}
	return out
}
