// Package version carries build metadata stamped in by the magefile.
package version

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"     // git describe, or "dev" for plain go build
	CommitHash = "unknown" // short commit hash
	BuildDate  = "unknown" // RFC 3339 UTC
)
