package version

// Version is the version of the backtest core.
// Release builds override it with
// -ldflags "-X github.com/rxtech-lab/argo-fund/internal/version.Version=1.2.3".
// "main" marks a development build.
var Version = "main"

// GetVersion returns the current version of the backtest core.
func GetVersion() string {
	return Version
}
