// Package ref provides target reference parsing and version-range matching.
package ref

import (
	"fmt"
	"regexp"
	"strings"
)

const logPrefix = "ref:parser"

// ParsedTargetRef holds the parsed components of a target reference string.
type ParsedTargetRef struct {
	// Full target identifier (e.g., "system.display.brightness")
	Full string
	// Namespace (e.g., "system")
	Namespace string
	// Target name within the namespace (e.g., "display.brightness")
	Name string
	// Version range if specified (e.g., "^1.2.0", "1", ""); empty string means no version
	Range string
	// Raw input string
	Raw string
}

var (
	targetNameRegex   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)
	namespaceRegex    = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	majorOnlyRegex    = regexp.MustCompile(`^\d+$`)
	exactVersionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+(-[\w.]+)?(\+[\w.]+)?$`)
)

// ParseTargetRef parses a target reference string.
//
// Supported formats:
//   - system.display.brightness           (no version)
//   - system.display.brightness@1         (major only)
//   - system.display.brightness@1.2.1     (exact version)
//   - system.display.brightness@^1.2.0    (caret range)
//   - system.display.brightness@~1.2.0    (tilde range)
//   - system.display.brightness@>=1.0.0   (comparison range)
func ParseTargetRef(input string) (*ParsedTargetRef, error) {
	raw := strings.TrimSpace(input)

	// Split on @ to separate target from version
	atIndex := strings.Index(raw, "@")

	var targetPart string
	var rangeStr string

	if atIndex == -1 {
		targetPart = raw
	} else {
		targetPart = raw[:atIndex]
		rangeStr = raw[atIndex+1:]
	}

	// Parse target part: namespace.name (name can have dots)
	firstDot := strings.Index(targetPart, ".")
	if firstDot == -1 {
		return nil, fmt.Errorf("%s - invalid target format, missing namespace: %s", logPrefix, raw)
	}

	namespace := targetPart[:firstDot]
	name := targetPart[firstDot+1:]

	if namespace == "" || name == "" {
		return nil, fmt.Errorf("%s - invalid target format: %s", logPrefix, raw)
	}

	return &ParsedTargetRef{
		Full:      targetPart,
		Namespace: namespace,
		Name:      name,
		Range:     rangeStr,
		Raw:       raw,
	}, nil
}

// IsMajorOnly checks if a range is a major-only specifier (e.g., "1").
func IsMajorOnly(rangeStr string) bool {
	return majorOnlyRegex.MatchString(rangeStr)
}

// IsExactVersion checks if a range is an exact version (e.g., "1.2.1").
func IsExactVersion(rangeStr string) bool {
	return exactVersionRegex.MatchString(rangeStr)
}

// ExtractMajorFromRange extracts the major version if the range is major-only.
// Returns -1 if not a major-only range.
func ExtractMajorFromRange(rangeStr string) int {
	if !IsMajorOnly(rangeStr) {
		return -1
	}
	var major int
	fmt.Sscanf(rangeStr, "%d", &major)
	return major
}

// ValidateTargetName validates a target name (allows letters, digits, dots, hyphens, underscores).
func ValidateTargetName(name string) bool {
	return targetNameRegex.MatchString(name)
}

// ValidateNamespace validates a namespace (lowercase, alphanumeric, hyphens).
func ValidateNamespace(namespace string) bool {
	return namespaceRegex.MatchString(namespace)
}
