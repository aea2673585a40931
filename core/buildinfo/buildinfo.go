// Package buildinfo carries version metadata stamped at link time.
package buildinfo

// Set via -ldflags, for example:
//
//	-X 'github.com/multicco/sportbot4-sub000/core/buildinfo.Version=v0.4.0'
//	-X 'github.com/multicco/sportbot4-sub000/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/multicco/sportbot4-sub000/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)
