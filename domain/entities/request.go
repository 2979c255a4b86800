package entities

// AccessKind names one of the fixed permission facets.
type AccessKind string

const (
	AccessRead    AccessKind = "read"
	AccessWrite   AccessKind = "write"
	AccessNetwork AccessKind = "net"
	AccessRun     AccessKind = "run"
	AccessEnv     AccessKind = "env"
)

// AccessRequest asks whether a compiled policy would let a plugin perform
// one operation. Target is a path, host or command; it is ignored for env.
type AccessRequest struct {
	Kind   AccessKind
	Target string
}
