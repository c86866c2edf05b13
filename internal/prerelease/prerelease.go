// Package prerelease finds dependencies declared on prerelease versions and
// checks whether a stable release has caught up with them.
package prerelease

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/git-pkgs/versioncheck/internal/core"
	"github.com/git-pkgs/versioncheck/internal/semver"
)

// Scan returns every dependency, apart from those in exclude, whose declared
// version is a prerelease.
func Scan(m *core.Manifest, exclude []string) []core.PrereleasePackage {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	var pkgs []core.PrereleasePackage
	for _, d := range m.All() {
		if skip[d.Name] {
			continue
		}
		stripped := semver.StripRange(d.Requirements)
		parsed, ok := semver.Parse(stripped)
		if !ok || !parsed.IsPrerelease() {
			continue
		}
		pkgs = append(pkgs, core.PrereleasePackage{
			Name:           d.Name,
			Version:        stripped,
			PrereleaseType: parsed.Prerelease,
		})
	}
	return pkgs
}

// Options tunes Check.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Check looks up the "latest" tag of every package concurrently and reports
// whether a stable release is available.
func Check(ctx context.Context, src core.Source, pkgs []core.PrereleasePackage, opts Options) []core.PrereleaseCheckResult {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lookups := make([]core.Lookup, len(pkgs))
	for i, pkg := range pkgs {
		lookups[i] = core.RegistryLookup(src, pkg.Name, "latest")
	}
	latest := core.FetchAll(ctx, lookups, opts.Concurrency, opts.Timeout)

	results := make([]core.PrereleaseCheckResult, len(pkgs))
	for i, pkg := range pkgs {
		if !latest[i].OK() {
			logger.Debug("latest lookup failed",
				zap.String("pkg", pkg.Name),
				zap.String("source", src.Name()),
				zap.Error(latest[i].Err))
		}
		results[i] = Evaluate(pkg, latest[i].Ptr())
	}
	return results
}

// Evaluate classifies a prerelease package against the registry's latest
// version. A nil latest means the lookup failed.
func Evaluate(pkg core.PrereleasePackage, latest *string) core.PrereleaseCheckResult {
	res := core.PrereleaseCheckResult{
		Name:           pkg.Name,
		Installed:      pkg.Version,
		Latest:         latest,
		PrereleaseType: pkg.PrereleaseType,
		Status:         core.StatusUpToDate,
	}
	if latest == nil {
		return res
	}

	switch status := semver.Compare(pkg.Version, *latest, ""); status {
	case core.StatusStableAvailable:
		res.StableAvailable = true
		res.Status = status
	case core.StatusNewer:
		res.Status = status
	case core.StatusUpToDate, core.StatusUpgradeAvailable, core.StatusCanaryAvailable:
	}
	return res
}
