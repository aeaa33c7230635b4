package version

// Name is the short product name used in logs and metrics.
const Name = "Mirage"

// Service is the banner the decoy backend advertises to its visitors.
const Service = "Suraksha Mirage Backend"

// Build metadata, overridden via -ldflags at release time.
var (
	Version   = "1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info is the build metadata rendered by the health endpoints.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Current returns the build metadata of the running binary.
func Current() Info {
	return Info{Service: Service, Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}

// Full returns the version decorated with commit and build time when known.
func Full() string {
	if BuildTime == "unknown" || GitCommit == "unknown" {
		return Version
	}
	return Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")"
}
