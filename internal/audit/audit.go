// Package audit runs the version checks for a manifest and collects the
// outcome into a report.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/git-pkgs/versioncheck/internal/config"
	"github.com/git-pkgs/versioncheck/internal/consistency"
	"github.com/git-pkgs/versioncheck/internal/core"
	"github.com/git-pkgs/versioncheck/internal/prerelease"
	"github.com/git-pkgs/versioncheck/internal/report"
	"github.com/git-pkgs/versioncheck/internal/semver"
)

const stableSuffix = "(stable)"

// Auditor checks manifests against a Source using a Config.
type Auditor struct {
	src         core.Source
	cfg         *config.Config
	logger      *zap.Logger
	timeout     time.Duration
	concurrency int
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Auditor) {
		a.logger = l
	}
}

// WithTimeout overrides the per-lookup timeout from the config.
func WithTimeout(d time.Duration) Option {
	return func(a *Auditor) {
		a.timeout = d
	}
}

// WithConcurrency overrides the lookup concurrency from the config.
func WithConcurrency(n int) Option {
	return func(a *Auditor) {
		a.concurrency = n
	}
}

// New creates an Auditor. src may be nil when only fast audits are run.
func New(src core.Source, cfg *config.Config, opts ...Option) *Auditor {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Auditor{
		src:         src,
		cfg:         cfg,
		logger:      zap.NewNop(),
		timeout:     cfg.Timeout,
		concurrency: cfg.Concurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run audits m. Fast mode only reads the manifest; Full mode also looks up
// installed and registry versions. Lookups that fail are reported as unknown
// and never abort the audit.
func (a *Auditor) Run(ctx context.Context, m *core.Manifest, mode report.Mode) *report.Report {
	rep := &report.Report{
		Mode:        mode,
		Consistency: consistency.Run(m, a.cfg.Groups),
	}

	if mode == report.Fast {
		rep.Prereleases = prerelease.Scan(m, nil)
		return rep
	}

	start := time.Now()
	rep.Packages = a.trackedPackages(ctx, m)
	rep.PrereleaseResults = prerelease.Check(ctx, a.src, prerelease.Scan(m, a.cfg.CanaryPackages()), prerelease.Options{
		Concurrency: a.concurrency,
		Timeout:     a.timeout,
		Logger:      a.logger,
	})
	a.logger.Debug("registry lookups finished",
		zap.String("source", a.src.Name()),
		zap.Int("tracked", len(rep.Packages)),
		zap.Int("prereleases", len(rep.PrereleaseResults)),
		zap.Duration("elapsed", time.Since(start)))

	rep.Summary = a.summary(rep)
	rep.UpdateCommand = a.cfg.UpdateCommand
	for _, page := range a.cfg.ReleasePages {
		rep.ReleasePages = append(rep.ReleasePages, report.Link{Label: page.Label, URL: page.URL})
	}
	return rep
}

// trackedPackages looks up installed, latest and, for canary packages, canary
// versions of every tracked package in one fan-out.
func (a *Auditor) trackedPackages(ctx context.Context, m *core.Manifest) []report.Package {
	type slots struct{ installed, latest, canary int }

	var lookups []core.Lookup
	add := func(l core.Lookup) int {
		lookups = append(lookups, l)
		return len(lookups) - 1
	}

	index := make([]slots, len(a.cfg.Packages))
	for i, p := range a.cfg.Packages {
		index[i] = slots{
			installed: add(core.InstalledLookup(a.src, p.Name)),
			latest:    add(core.RegistryLookup(a.src, p.Name, "latest")),
			canary:    -1,
		}
		if p.Canary {
			index[i].canary = add(core.RegistryLookup(a.src, p.Name, "canary"))
		}
	}

	results := core.FetchAll(ctx, lookups, a.concurrency, a.timeout)

	pkgs := make([]report.Package, len(a.cfg.Packages))
	for i, p := range a.cfg.Packages {
		info := core.VersionInfo{
			Installed: results[index[i].installed].Ptr(),
			Latest:    results[index[i].latest].Ptr(),
		}
		if declared, ok := m.Declared(p.Name); ok {
			info.Declared = &declared
		}
		if index[i].canary >= 0 {
			info.Canary = results[index[i].canary].Ptr()
		}

		purlVersion := ""
		if info.Installed != nil {
			purlVersion = *info.Installed
		}
		pkgs[i] = report.Package{
			Name:        p.Name,
			VersionInfo: info,
			Status:      semver.CompareInfo(info),
			ShowCanary:  p.Canary,
			PURL:        core.NPMPURL(p.Name, purlVersion),
		}
	}
	return pkgs
}

// summary collects the upgrades of the summary packages, in config order,
// followed by prerelease packages that have a stable release.
func (a *Auditor) summary(rep *report.Report) report.Summary {
	byName := make(map[string]report.Package, len(rep.Packages))
	for _, p := range rep.Packages {
		byName[p.Name] = p
	}

	var s report.Summary
	for _, name := range a.cfg.Summary {
		p, ok := byName[name]
		if !ok || p.Installed == nil || p.Latest == nil {
			continue
		}
		switch p.Status {
		case core.StatusUpgradeAvailable:
			s.Stable = append(s.Stable, report.Upgrade{Name: name, From: *p.Installed, To: *p.Latest})
		case core.StatusStableAvailable:
			s.FromPrerelease = append(s.FromPrerelease, report.Upgrade{Name: name, From: *p.Installed, To: *p.Latest, Suffix: stableSuffix})
		case core.StatusUpToDate, core.StatusCanaryAvailable, core.StatusNewer:
		}
	}

	for _, res := range rep.PrereleaseResults {
		if res.StableAvailable && res.Latest != nil {
			s.FromPrerelease = append(s.FromPrerelease, report.Upgrade{Name: res.Name, From: res.Installed, To: *res.Latest, Suffix: stableSuffix})
		}
	}
	return s
}
