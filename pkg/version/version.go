package version

import "fmt"

// Version information - using semantic versioning
const (
	Major      = 1
	Minor      = 0
	Patch      = 0
	PreRelease = "" // e.g., "alpha", "beta", "rc1"
)

// Version returns the semantic version string
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)

	if PreRelease != "" {
		version += "-" + PreRelease
	}

	return version
}

// UserAgent returns the User-Agent value sent on upstream requests
func UserAgent() string {
	return "bork-wallet-sdk/" + Version()
}
