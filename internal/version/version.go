// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/HerbHall/lankaportal/internal/version.Version=1.2.0"
package version

import (
	"fmt"
	"runtime"
)

// Product is the name reported in version strings and outbound User-Agents.
const Product = "LankaPortal"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the one-line description printed by -version.
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Product, Version, GitCommit, BuildDate, runtime.Version())
}

// Short returns just the version string (e.g., "0.3.1" or "dev").
func Short() string {
	return Version
}

// UserAgent is sent by the outbound HTTP clients (contact relay, remote auth).
func UserAgent() string {
	return Product + "/" + Version
}

// Map returns the build metadata for the health endpoint.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}
