// Package version holds the build version, set with
// -ldflags "-X contactmap/internal/version.Version=...".
package version

var Version = "dev"
