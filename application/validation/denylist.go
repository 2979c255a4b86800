// Package validation sanitizes untrusted strings taken from plugin manifests
// before they can reach sandbox flags or trigger a network fetch.
package validation

// deniedPathPrefixes are operating-system directories no plugin may be
// granted, matched as literal prefixes.
var deniedPathPrefixes = []string{
	"/etc/",
	"/root/",
	"/sys/",
	"/proc/",
	"/dev/",
	"/tmp/",
	"/boot/",
	"/usr/bin/",
	"/usr/sbin/",
	"/bin/",
	"/sbin/",
	`C:\Windows\`,
	`C:\Program Files\`,
	`C:\Users\`,
	"/System/",
	"/Library/",
	"/Applications/",
}

// deniedPathRoots grant the entire filesystem.
var deniedPathRoots = []string{"/", `\`, `C:\`, "C:/", "C:"}

// broadHosts open every interface or the local machine.
var broadHosts = map[string]struct{}{
	"0.0.0.0":   {},
	"::":        {},
	"localhost": {},
	"127.0.0.1": {},
	"::1":       {},
}

// metadataHosts are cloud instance metadata services.
var metadataHosts = map[string]struct{}{
	"169.254.169.254":            {},
	"100.100.100.200":            {},
	"metadata":                   {},
	"metadata.local":             {},
	"metadata.google.internal":   {},
	"metadata.azure.com":         {},
	"instance-data":              {},
	"instance-data.ec2.internal": {},
}

// metadataFragments catch wildcard-DNS rebinding forms such as
// 169.254.169.254.nip.io or 169-254-169-254.xip.io.
var metadataFragments = []string{
	"169.254.169.254",
	"169-254-169-254",
	"100.100.100.200",
	"100-100-100-200",
}

// privateIPv4Prefixes are matched against the start of every host.
var privateIPv4Prefixes = []string{"192.168.", "10."}

const loopbackIPv4Prefix = "127."

// shellMetacharacters may never appear in a run_commands entry.
const shellMetacharacters = "&|;><`$(){}"

// deniedCommands are executables no plugin may be granted, compared by base
// name without case or .exe suffix.
var deniedCommands = map[string]struct{}{
	"rm":     {},
	"del":    {},
	"format": {},
	"fdisk":  {},
	"dd":     {},
	"mkfs":   {},
	"sudo":   {},
	"su":     {},
	"chmod":  {},
	"chown":  {},
	"passwd": {},
	"curl":   {},
	"wget":   {},
	"nc":     {},
	"netcat": {},
	"telnet": {},
	"ssh":    {},
	"scp":    {},
	"rsync":  {},
	"ftp":    {},
	"eval":   {},
	"exec":   {},
}

// dangerousSchemes are refused for every URL purpose.
var dangerousSchemes = map[string]struct{}{
	"file":       {},
	"javascript": {},
	"data":       {},
	"ftp":        {},
	"mailto":     {},
}

// TrustedHTTPRegistryHosts may serve registries over plain http. Empty by
// default, so http registries are always refused.
var TrustedHTTPRegistryHosts = map[string]struct{}{}
