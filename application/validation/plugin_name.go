package validation

import "strings"

const invalidNameChars = `/\:*?"<>|`

// ValidatePluginName accepts a name usable as a directory under
// .makeitso/plugins and as a registry lookup key.
func ValidatePluginName(name string) error {
	if strings.TrimSpace(name) == "" {
		return reject("plugin name", name, "empty name")
	}
	if i := strings.IndexAny(name, invalidNameChars); i >= 0 {
		return reject("plugin name", name, "invalid character "+string(name[i]))
	}
	if strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return reject("plugin name", name, "leading dot")
	}
	if strings.ContainsAny(name, "[]{},") {
		return reject("plugin name", name, "glob metacharacter or list separator")
	}
	return nil
}

// ValidateScriptPath accepts a command script path, which must stay inside
// the plugin directory.
func ValidateScriptPath(script string) error {
	if strings.TrimSpace(script) == "" {
		return reject("script", script, "empty path")
	}
	if strings.Contains(script, "..") {
		return reject("script", script, "parent directory traversal")
	}
	if strings.HasPrefix(script, "/") || strings.HasPrefix(script, `\`) || isWindowsPath(script) {
		return reject("script", script, "absolute path")
	}
	return nil
}
