package validation

import (
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// ValidateHost accepts a network host a plugin asks to reach. The result is
// trimmed and lowercased. An optional :port is kept in the result but
// ignored by the checks. Private and loopback IPv4 prefixes are matched on
// every host, so wildcard-DNS names such as 192.168.1.1.nip.io are refused
// along with the literals.
func ValidateHost(raw string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return "", reject("host", raw, "empty host")
	}
	if strings.Contains(host, "*") {
		return "", reject("host", raw, "wildcard")
	}
	if hasListBreak(host) {
		return "", reject("host", raw, "list separator or control character")
	}

	name := strings.TrimSuffix(hostPart(host), ".")
	if name == "" {
		return "", reject("host", raw, "empty host")
	}
	if _, broad := broadHosts[name]; broad {
		return "", reject("host", raw, "grants local or all-interface access")
	}
	if isMetadataHost(name) {
		return "", reject("host", raw, "cloud metadata endpoint")
	}
	// Prefixes apply to names too: 10.0.0.1.nip.io resolves to 10.0.0.1.
	if strings.HasPrefix(name, loopbackIPv4Prefix) {
		return "", reject("host", raw, "loopback address")
	}
	if isPrivateIPv4Prefix(name) {
		return "", reject("host", raw, "private network range")
	}
	if addr, err := netip.ParseAddr(name); err == nil {
		if reason := restrictedAddr(addr); reason != "" {
			return "", reject("host", raw, reason)
		}
	} else if isDottedNumeric(name) && !strings.Contains(name, ".") {
		return "", reject("host", raw, "integer address literal")
	}
	return host, nil
}

// hostPart strips an optional port and IPv6 brackets.
func hostPart(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

func isMetadataHost(name string) bool {
	if _, ok := metadataHosts[name]; ok {
		return true
	}
	for _, frag := range metadataFragments {
		if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}

func restrictedAddr(addr netip.Addr) string {
	addr = addr.Unmap()
	switch {
	case addr.IsLoopback():
		return "loopback address"
	case addr.IsUnspecified():
		return "grants local or all-interface access"
	case addr.IsPrivate():
		return "private network range"
	case addr.IsLinkLocalUnicast():
		return "link-local address"
	}
	return ""
}

// isPrivateIPv4Prefix matches the leading octets of name, which may be a
// partial literal such as "10.1" or a DNS name embedding an address.
func isPrivateIPv4Prefix(name string) bool {
	for _, prefix := range privateIPv4Prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	octets := strings.Split(name, ".")
	if len(octets) >= 2 && octets[0] == "172" {
		n, err := strconv.Atoi(octets[1])
		return err == nil && n >= 16 && n <= 31
	}
	return false
}

func isDottedNumeric(name string) bool {
	for _, r := range name {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}
