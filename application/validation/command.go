package validation

import (
	"path"
	"strings"
	"unicode"
)

// ValidateCommand accepts a bare executable name a plugin asks to spawn.
func ValidateCommand(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", reject("command", raw, "empty command")
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return "", reject("command", raw, "contains whitespace")
	}
	if hasListBreak(raw) {
		return "", reject("command", raw, "list separator or control character")
	}
	if i := strings.IndexAny(raw, shellMetacharacters); i >= 0 {
		return "", reject("command", raw, "shell metacharacter "+string(raw[i]))
	}
	if _, denied := deniedCommands[commandBase(raw)]; denied {
		return "", reject("command", raw, "dangerous executable")
	}
	return raw, nil
}

// commandBase reduces /usr/bin/RM.exe to rm.
func commandBase(cmd string) string {
	base := path.Base(strings.ReplaceAll(cmd, `\`, "/"))
	base = strings.ToLower(base)
	return strings.TrimSuffix(base, ".exe")
}
