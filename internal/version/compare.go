package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckCompatibility reports whether a request written for requested can run on core.
//
// An empty requested version or a "main" build on either side skips the check.
// Otherwise major and minor must match, patch may differ:
//   - core 1.2.3, request 1.2.0 -> ok
//   - core 1.3.0, request 1.2.0 -> minor mismatch
//   - core 2.0.0, request 1.2.0 -> major mismatch
func CheckCompatibility(core, requested string) error {
	core = strings.TrimPrefix(strings.TrimSpace(core), "v")
	requested = strings.TrimPrefix(strings.TrimSpace(requested), "v")

	if requested == "" || core == "main" || requested == "main" {
		return nil
	}

	coreVersion, err := semver.NewVersion(core)
	if err != nil {
		return fmt.Errorf("invalid core version '%s': %w", core, err)
	}

	requestedVersion, err := semver.NewVersion(requested)
	if err != nil {
		return fmt.Errorf("invalid request version '%s': %w", requested, err)
	}

	if coreVersion.Major() != requestedVersion.Major() {
		return fmt.Errorf("major version mismatch: core is %d.x.x but request targets %d.x.x",
			coreVersion.Major(), requestedVersion.Major())
	}

	if coreVersion.Minor() != requestedVersion.Minor() {
		return fmt.Errorf("minor version mismatch: core is %d.%d.x but request targets %d.%d.x",
			coreVersion.Major(), coreVersion.Minor(),
			requestedVersion.Major(), requestedVersion.Minor())
	}

	return nil
}
