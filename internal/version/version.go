package version

import "fmt"

// Build metadata, overridden with -ldflags at release time.
var (
	Version   = "0.1.0"
	Commit    = "none"
	BuildTime = "unknown"
)

// ToolName is the generator named in the "__" banner of written configs.
const ToolName = "gen-update-config"

// Short returns the release version alone.
func Short() string {
	return Version
}

// Full returns the tool name with version, commit and build time on one line.
func Full() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", ToolName, Version, Commit, BuildTime)
}
