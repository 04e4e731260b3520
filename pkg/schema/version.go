package schema

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportedVersions is the caret constraint on document versions this
// module reads without loss.
const SupportedVersions = "^1.0"

// IsCompatible reports whether a document version satisfies
// SupportedVersions. It returns an error if version is not a semantic
// version.
func IsCompatible(version string) (bool, error) {
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return false, fmt.Errorf("invalid supported range: %w", err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid document version %q: %w", version, err)
	}

	return constraint.Check(v), nil
}
