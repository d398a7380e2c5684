package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckSnapshotCompatibility checks whether a persisted performance snapshot
// written by an earlier build can be restored by the current agent.
// Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
func CheckSnapshotCompatibility(agentVersion, snapshotVersion string) error {
	// Strip 'v' prefix if present for consistency
	agentVersion = strings.TrimPrefix(agentVersion, "v")
	snapshotVersion = strings.TrimPrefix(snapshotVersion, "v")

	// Skip version check for "main" (development builds)
	if agentVersion == "main" || snapshotVersion == "main" {
		return nil
	}

	agentSemver, err := semver.NewVersion(agentVersion)
	if err != nil {
		return fmt.Errorf("invalid agent version '%s': %w", agentVersion, err)
	}

	snapshotSemver, err := semver.NewVersion(snapshotVersion)
	if err != nil {
		return fmt.Errorf("invalid snapshot version '%s': %w", snapshotVersion, err)
	}

	if agentSemver.Major() != snapshotSemver.Major() {
		return fmt.Errorf("major version mismatch: agent is %d.x.x but snapshot was written by %d.x.x",
			agentSemver.Major(), snapshotSemver.Major())
	}

	if agentSemver.Minor() != snapshotSemver.Minor() {
		return fmt.Errorf("minor version mismatch: agent is %d.%d.x but snapshot was written by %d.%d.x",
			agentSemver.Major(), agentSemver.Minor(),
			snapshotSemver.Major(), snapshotSemver.Minor())
	}

	// Patch versions can differ, so we're compatible
	return nil
}
