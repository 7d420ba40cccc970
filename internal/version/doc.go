// Package version reports which gen-update-config build produced a config.
//
// The banner written into every config names the tool; Version, Commit and
// BuildTime are set with -ldflags "-X" by release builds.
package version
