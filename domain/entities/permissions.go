package entities

import (
	"sort"
	"strings"
)

// DeclaredPermissions is the raw, untrusted permission block of a manifest.
// It appears once at plugin scope and optionally once per command.
type DeclaredPermissions struct {
	FileRead    []string `toml:"file_read" json:"file_read,omitempty" yaml:"file_read,omitempty"`
	FileWrite   []string `toml:"file_write" json:"file_write,omitempty" yaml:"file_write,omitempty"`
	EnvAccess   *bool    `toml:"env_access" json:"env_access,omitempty" yaml:"env_access,omitempty"`
	Network     []string `toml:"network" json:"network,omitempty" yaml:"network,omitempty"`
	RunCommands []string `toml:"run_commands" json:"run_commands,omitempty" yaml:"run_commands,omitempty"`
}

// IsEmpty reports whether the block declares nothing at all.
func (d *DeclaredPermissions) IsEmpty() bool {
	if d == nil {
		return true
	}
	return len(d.FileRead) == 0 && len(d.FileWrite) == 0 && d.EnvAccess == nil &&
		len(d.Network) == 0 && len(d.RunCommands) == 0
}

// StringSet is an unordered set of strings.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v into the set.
func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Union returns a new set containing the members of both sets.
func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range other {
		out[v] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same members.
func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// PermissionPolicy is the trusted, compiled form of a plugin's permissions.
// Every entry has passed validation. A policy is never mutated once built;
// WithRead returns a copy.
type PermissionPolicy struct {
	read      StringSet
	write     StringSet
	network   StringSet
	run       StringSet
	envAccess bool
}

// PolicySpec carries the members of a policy under construction.
type PolicySpec struct {
	Read      []string
	Write     []string
	Network   []string
	Run       []string
	EnvAccess bool
}

// NewPermissionPolicy copies spec into a new immutable policy.
func NewPermissionPolicy(spec PolicySpec) PermissionPolicy {
	return PermissionPolicy{
		read:      NewStringSet(spec.Read...),
		write:     NewStringSet(spec.Write...),
		network:   NewStringSet(spec.Network...),
		run:       NewStringSet(spec.Run...),
		envAccess: spec.EnvAccess,
	}
}

// Spec returns the members of the policy as sorted slices.
func (p PermissionPolicy) Spec() PolicySpec {
	return PolicySpec{
		Read:      p.Read(),
		Write:     p.Write(),
		Network:   p.Network(),
		Run:       p.Run(),
		EnvAccess: p.envAccess,
	}
}

func (p PermissionPolicy) Read() []string { return p.read.Sorted() }
func (p PermissionPolicy) Write() []string { return p.write.Sorted() }
func (p PermissionPolicy) Network() []string { return p.network.Sorted() }
func (p PermissionPolicy) Run() []string { return p.run.Sorted() }
func (p PermissionPolicy) EnvAccess() bool { return p.envAccess }

func (p PermissionPolicy) CanRead(path string) bool { return p.read.Has(path) }
func (p PermissionPolicy) CanWrite(path string) bool { return p.write.Has(path) }
func (p PermissionPolicy) CanConnect(host string) bool { return p.network.Has(host) }
func (p PermissionPolicy) CanRun(command string) bool { return p.run.Has(command) }

// WithRead returns a copy of the policy with extra read grants. The receiver
// is left untouched.
func (p PermissionPolicy) WithRead(paths ...string) PermissionPolicy {
	spec := p.Spec()
	spec.Read = append(spec.Read, paths...)
	return NewPermissionPolicy(spec)
}

// Equal reports whether two policies grant exactly the same access.
func (p PermissionPolicy) Equal(other PermissionPolicy) bool {
	return p.envAccess == other.envAccess &&
		p.read.Equal(other.read) &&
		p.write.Equal(other.write) &&
		p.network.Equal(other.network) &&
		p.run.Equal(other.run)
}

func (p PermissionPolicy) String() string {
	var b strings.Builder
	b.WriteString("read=[" + strings.Join(p.Read(), ",") + "]")
	b.WriteString(" write=[" + strings.Join(p.Write(), ",") + "]")
	b.WriteString(" net=[" + strings.Join(p.Network(), ",") + "]")
	b.WriteString(" run=[" + strings.Join(p.Run(), ",") + "]")
	if p.envAccess {
		b.WriteString(" env")
	}
	return b.String()
}
