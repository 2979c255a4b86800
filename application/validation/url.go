package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Purpose selects the scheme policy applied to a remote URL.
type Purpose int

const (
	// PurposeRegistry is a git source plugins are installed from.
	PurposeRegistry Purpose = iota
	// PurposeDependency is a remote module fetched by the runtime.
	PurposeDependency
)

func (p Purpose) String() string {
	switch p {
	case PurposeRegistry:
		return "registry"
	case PurposeDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// sshShorthand matches scp-style git remotes such as git@github.com:org/repo.git.
var sshShorthand = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^\s:]`)

// ValidateURL accepts a remote URL for the given purpose and returns it
// unchanged. Every registry source and dependency URL goes through here
// before anything is cloned or fetched. SSH shorthand (git@host:path) is
// accepted for registries only, and its host is checked like any other.
func ValidateURL(raw string, purpose Purpose) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", reject("url", raw, "empty URL")
	}

	if !strings.Contains(raw, "://") && sshShorthand.MatchString(raw) {
		if purpose == PurposeDependency {
			return "", reject("url", raw, "dependencies must use https")
		}
		host := raw[strings.Index(raw, "@")+1 : strings.Index(raw, ":")]
		if _, err := ValidateHost(host); err != nil {
			return "", reject("url", raw, fmt.Sprintf("host: %v", err))
		}
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", reject("url", raw, "unparsable")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return "", reject("url", raw, "missing scheme")
	}
	if _, bad := dangerousSchemes[scheme]; bad {
		return "", reject("url", raw, "scheme "+scheme+" is not allowed")
	}

	host := u.Hostname()
	if host == "" {
		return "", reject("url", raw, "missing host")
	}
	if _, err := ValidateHost(host); err != nil {
		return "", reject("url", raw, fmt.Sprintf("host: %v", err))
	}

	switch purpose {
	case PurposeDependency:
		if scheme != "https" {
			return "", reject("url", raw, "dependencies must use https")
		}
		if hasTraversal(raw, u) {
			return "", reject("url", raw, "parent directory traversal")
		}
	case PurposeRegistry:
		switch scheme {
		case "https", "ssh", "git":
		case "http":
			if _, trusted := TrustedHTTPRegistryHosts[strings.ToLower(host)]; !trusted {
				return "", reject("url", raw, "plain http registry")
			}
		default:
			return "", reject("url", raw, "scheme "+scheme+" is not allowed for registries")
		}
	default:
		return "", reject("url", raw, "unknown purpose")
	}
	return raw, nil
}

func hasTraversal(raw string, u *url.URL) bool {
	if strings.Contains(raw, "../") {
		return true
	}
	if p, err := url.PathUnescape(u.EscapedPath()); err == nil && strings.Contains(p, "../") {
		return true
	}
	return strings.Contains(u.Path, "../")
}
