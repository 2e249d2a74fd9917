// Package version carries the build identity stamped into fygen-ctl
// binaries through ldflags; see build.go at the module root.
package version

// Version is the release string, "dev" when built without the builder.
var Version = "dev"

// BuildDate is the UTC build timestamp.
var BuildDate = "not set"
