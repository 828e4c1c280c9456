package build

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent is the default User-Agent sent with every request.
func UserAgent() string {
	return "docs-harvester/" + Version + " (+document preservation)"
}
