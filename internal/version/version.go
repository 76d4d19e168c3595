// Package version exposes the build version reported by the API.
package version

// Version is the current release, overridable at build time with
// -ldflags "-X github.com/mediadb/mediadb/internal/version.Version=...".
var Version = "0.4.0"
