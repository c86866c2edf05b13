// Package report holds the outcome of an audit and renders it as text or
// JSON. Nothing is printed while the audit runs; the report is written once
// at the end.
package report

import (
	"github.com/git-pkgs/versioncheck/internal/consistency"
	"github.com/git-pkgs/versioncheck/internal/core"
)

// Mode selects which parts of the audit ran.
type Mode int

const (
	// Full queries the installed tree and the registry.
	Full Mode = iota
	// Fast only inspects the manifest.
	Fast
)

func (m Mode) String() string {
	if m == Fast {
		return "fast"
	}
	return "full"
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Package is the block reported for a tracked package.
type Package struct {
	Name string `json:"name"`
	core.VersionInfo
	Status     core.Status `json:"status"`
	ShowCanary bool        `json:"-"`
	PURL       string      `json:"purl,omitempty"`
}

// Upgrade is a line of the upgrade summary.
type Upgrade struct {
	Name   string `json:"name"`
	From   string `json:"from"`
	To     string `json:"to"`
	Suffix string `json:"-"`
}

// Summary lists the upgrades worth acting on.
type Summary struct {
	Stable         []Upgrade `json:"stable"`
	FromPrerelease []Upgrade `json:"from_prerelease"`
}

// Empty reports whether there is nothing to upgrade.
func (s Summary) Empty() bool {
	return len(s.Stable) == 0 && len(s.FromPrerelease) == 0
}

// Link is a labelled URL.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Report accumulates everything an audit found.
type Report struct {
	Mode              Mode                         `json:"mode"`
	Packages          []Package                    `json:"packages,omitempty"`
	Prereleases       []core.PrereleasePackage     `json:"prereleases,omitempty"`
	PrereleaseResults []core.PrereleaseCheckResult `json:"prerelease_results,omitempty"`
	Consistency       []core.ConsistencyCheck      `json:"consistency"`
	Summary           Summary                      `json:"summary"`
	ReleasePages      []Link                       `json:"release_pages,omitempty"`
	UpdateCommand     string                       `json:"update_command,omitempty"`
}

// Consistent reports whether every consistency group passed.
func (r *Report) Consistent() bool {
	return consistency.AllConsistent(r.Consistency)
}

// HasUpgrades reports whether the upgrade summary has entries.
func (r *Report) HasUpgrades() bool {
	return !r.Summary.Empty()
}

// ExitCode is 1 when any consistency group failed and 0 otherwise.
// Available upgrades never affect it.
func (r *Report) ExitCode() int {
	if r.Consistent() {
		return 0
	}
	return 1
}
