// Package semver parses and compares the MAJOR.MINOR.PATCH[-TAG[.N]] versions
// found in npm manifests and dist-tags.
package semver

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionPattern = regexp.MustCompile(`(?i)^(\d+)\.(\d+)\.(\d+)(?:-([a-z]+)\.?(\d+)?)?$`)

// ParsedVersion is the numeric core of a version plus its prerelease label.
type ParsedVersion struct {
	Major int
	Minor int
	Patch int

	// Prerelease is the tag after the dash ("canary", "beta", "rc"), or empty.
	Prerelease string

	// PrereleaseNum is the ordinal after the tag, nil when absent.
	PrereleaseNum *int
}

// IsPrerelease reports whether v carries a prerelease tag.
func (v ParsedVersion) IsPrerelease() bool {
	return v.Prerelease != ""
}

func (v ParsedVersion) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
		if v.PrereleaseNum != nil {
			s += "." + strconv.Itoa(*v.PrereleaseNum)
		}
	}
	return s
}

// Parse parses version. It does not strip range operators; use StripRange
// first. The second result is false when version does not match.
func Parse(version string) (ParsedVersion, bool) {
	m := versionPattern.FindStringSubmatch(version)
	if m == nil {
		return ParsedVersion{}, false
	}

	var v ParsedVersion
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return ParsedVersion{}, false
	}
	if v.Minor, err = strconv.Atoi(m[2]); err != nil {
		return ParsedVersion{}, false
	}
	if v.Patch, err = strconv.Atoi(m[3]); err != nil {
		return ParsedVersion{}, false
	}

	v.Prerelease = m[4]
	if m[5] != "" {
		n, err := strconv.Atoi(m[5])
		if err != nil {
			return ParsedVersion{}, false
		}
		v.PrereleaseNum = &n
	}

	return v, true
}

// StripRange removes leading range operators (^, ~, >, <, =) from a
// declared version.
func StripRange(version string) string {
	return strings.TrimLeft(version, "^~><=")
}

// CompareCore compares the major, minor and patch numbers of a and b and
// returns -1, 0 or 1. Prerelease labels are ignored.
func CompareCore(a, b ParsedVersion) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	return cmp.Compare(a.Patch, b.Patch)
}
