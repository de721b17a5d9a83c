package ref

import (
	"sort"

	masterminds "github.com/Masterminds/semver/v3"
)

// SatisfiesRange checks if a version string satisfies a range. Used by
// the directory to filter listings by declared schema version.
func SatisfiesRange(version, rangeStr string) bool {
	if rangeStr == "" {
		return true
	}

	if IsMajorOnly(rangeStr) {
		sv, err := masterminds.NewVersion(version)
		if err != nil {
			return false
		}
		return int(sv.Major()) == ExtractMajorFromRange(rangeStr)
	}

	constraint, err := masterminds.NewConstraint(rangeStr)
	if err != nil {
		// A range that is not a constraint may still be an exact version.
		return IsExactVersion(rangeStr) && version == rangeStr
	}

	sv, err := masterminds.NewVersion(version)
	if err != nil {
		return false
	}

	return constraint.Check(sv)
}

// SelectVersion finds the best matching version for a range: the
// highest satisfying version, or "" when none matches. An empty range
// matches everything, so it selects the highest version overall.
func SelectVersion(versions []string, rangeStr string) string {
	var matching []*masterminds.Version
	for _, raw := range versions {
		sv, err := masterminds.NewVersion(raw)
		if err != nil {
			continue
		}
		if SatisfiesRange(raw, rangeStr) {
			matching = append(matching, sv)
		}
	}

	if len(matching) == 0 {
		return ""
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].GreaterThan(matching[j])
	})
	return matching[0].Original()
}
