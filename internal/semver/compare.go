package semver

import "github.com/git-pkgs/versioncheck/internal/core"

// canaryProgress describes how the canary dist-tag relates to an installed
// prerelease.
type canaryProgress int

const (
	canaryNone canaryProgress = iota
	canaryNewerCore
	canaryHigherOrdinal
)

// situation is everything the classification depends on.
type situation struct {
	prerelease   bool // installed carries a prerelease tag
	latestStable bool // latest carries no prerelease tag
	core         int  // core(installed) compared to core(latest)
	canary       canaryProgress
}

// rule maps a situation to an outcome. Rules are evaluated in order and the
// first match wins.
type rule struct {
	match  func(situation) bool
	status core.Status
}

var rules = []rule{
	{func(s situation) bool { return s.prerelease && s.latestStable && s.core <= 0 }, core.StatusStableAvailable},
	{func(s situation) bool { return s.prerelease && s.canary != canaryNone }, core.StatusCanaryAvailable},
	{func(s situation) bool { return s.prerelease }, core.StatusUpToDate},
	{func(s situation) bool { return s.core < 0 }, core.StatusUpgradeAvailable},
	{func(s situation) bool { return s.core > 0 }, core.StatusNewer},
	{func(situation) bool { return true }, core.StatusUpToDate},
}

// Compare classifies an installed version against the registry's latest and,
// optionally, canary versions. An empty canary means none is known.
// If installed or latest cannot be parsed the result is StatusUpToDate.
func Compare(installed, latest, canary string) core.Status {
	inst, ok := Parse(installed)
	if !ok {
		return core.StatusUpToDate
	}
	lat, ok := Parse(latest)
	if !ok {
		return core.StatusUpToDate
	}

	s := situation{
		prerelease:   inst.IsPrerelease(),
		latestStable: !lat.IsPrerelease(),
		core:         CompareCore(inst, lat),
	}
	if s.prerelease {
		s.canary = progress(inst, canary)
	}

	for _, r := range rules {
		if r.match(s) {
			return r.status
		}
	}
	return core.StatusUpToDate
}

func progress(inst ParsedVersion, canary string) canaryProgress {
	if canary == "" {
		return canaryNone
	}
	can, ok := Parse(canary)
	if !ok || !can.IsPrerelease() {
		return canaryNone
	}

	switch c := CompareCore(inst, can); {
	case c < 0:
		return canaryNewerCore
	case c == 0 && inst.PrereleaseNum != nil && can.PrereleaseNum != nil && *can.PrereleaseNum > *inst.PrereleaseNum:
		return canaryHigherOrdinal
	}
	return canaryNone
}

// CompareInfo classifies a tracked package. Unknown installed or latest
// versions classify as StatusUpToDate.
func CompareInfo(info core.VersionInfo) core.Status {
	if info.Installed == nil || info.Latest == nil {
		return core.StatusUpToDate
	}
	canary := ""
	if info.Canary != nil {
		canary = *info.Canary
	}
	return Compare(*info.Installed, *info.Latest, canary)
}
