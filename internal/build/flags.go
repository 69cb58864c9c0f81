package build

// Info holds build-time information injected during compilation via
// -ldflags, for example:
//
//	go build -ldflags "-X haptic/internal/build.buildVersion=0.2.0"
//
// Development builds that skip the flags fall back to "dev".
type Info struct {
	Name    string // Application name
	Time    string // Build timestamp
	Commit  string // Git commit hash
	Version string // Semantic version
}

// Populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string

	info = Info{
		Name:    "haptic",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies any injected build information over the
// development defaults. Call it early in program startup.
func Initialize() {
	if buildName != "" {
		info.Name = buildName
	}
	if buildTime != "" {
		info.Time = buildTime
	}
	if buildCommit != "" {
		info.Commit = buildCommit
	}
	if buildVersion != "" {
		info.Version = buildVersion
	}
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return info
}
