package validation

import (
	"strings"
	"unicode"

	"github.com/makeitso-dev/mis/domain/entities"
)

// ValidatePath accepts a filesystem path a plugin asks to read or write.
// Matching is by literal prefix; the path is never canonicalized, so a
// symlink inside an allowed directory is not detected here. Beyond the
// prefixes it also refuses the bare denied directories (/etc, /tmp),
// filesystem roots (/, C:\), Windows prefixes in any letter case, and
// entries holding a comma or control character.
func ValidatePath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", reject("path", raw, "empty path")
	}
	if hasListBreak(raw) {
		return "", reject("path", raw, "list separator or control character")
	}
	if strings.Contains(raw, "..") {
		return "", reject("path", raw, "parent directory traversal")
	}
	for _, root := range deniedPathRoots {
		if strings.EqualFold(raw, root) {
			return "", reject("path", raw, "filesystem root")
		}
	}
	for _, prefix := range deniedPathPrefixes {
		if hasPathPrefix(raw, prefix) {
			return "", reject("path", raw, "system directory "+prefix)
		}
	}
	return raw, nil
}

// hasPathPrefix matches prefix literally, and also the bare directory
// without its trailing separator. Windows drive paths compare without case.
func hasPathPrefix(path, prefix string) bool {
	dir := prefix[:len(prefix)-1]
	if isWindowsPath(prefix) {
		return hasPrefixFold(path, prefix) || strings.EqualFold(path, dir)
	}
	return strings.HasPrefix(path, prefix) || path == dir
}

func isWindowsPath(p string) bool {
	return len(p) >= 2 && p[1] == ':'
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// hasListBreak reports a comma or control character, either of which would
// change the meaning of a comma-joined sandbox flag.
func hasListBreak(s string) bool {
	return strings.ContainsRune(s, ',') || strings.IndexFunc(s, unicode.IsControl) >= 0
}

func reject(kind, input, reason string) *entities.RejectionError {
	return &entities.RejectionError{Kind: kind, Input: input, Reason: reason}
}
