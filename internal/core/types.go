// Package core provides shared types and the lookup source system.
package core

// Dependency represents a dependency declared in a manifest.
type Dependency struct {
	Name         string
	Requirements string
	Scope        Scope
}

// Scope indicates which manifest section a dependency was declared in.
type Scope string

const (
	Runtime     Scope = "runtime"
	Development Scope = "development"
)

// Manifest holds the declared dependencies of a project in file order.
// It is not modified after loading.
type Manifest struct {
	Path         string
	Dependencies []Dependency
}

// Declared returns the range declared for name. Runtime declarations take
// precedence over development ones and empty ranges count as undeclared.
func (m *Manifest) Declared(name string) (string, bool) {
	var dev string
	for _, d := range m.Dependencies {
		if d.Name != name || d.Requirements == "" {
			continue
		}
		if d.Scope == Runtime {
			return d.Requirements, true
		}
		if dev == "" {
			dev = d.Requirements
		}
	}
	return dev, dev != ""
}

// All returns the union of runtime and development dependencies. A development
// entry replaces a runtime entry with the same name but keeps its position.
func (m *Manifest) All() []Dependency {
	index := make(map[string]int, len(m.Dependencies))
	var all []Dependency
	for _, scope := range []Scope{Runtime, Development} {
		for _, d := range m.Dependencies {
			if d.Scope != scope {
				continue
			}
			if i, ok := index[d.Name]; ok {
				all[i] = d
				continue
			}
			index[d.Name] = len(all)
			all = append(all, d)
		}
	}
	return all
}

// Status is the upgrade classification of an installed version.
type Status int

const (
	StatusUpToDate Status = iota
	StatusUpgradeAvailable
	StatusStableAvailable
	StatusCanaryAvailable
	StatusNewer
)

func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up-to-date"
	case StatusUpgradeAvailable:
		return "upgrade-available"
	case StatusStableAvailable:
		return "stable-available"
	case StatusCanaryAvailable:
		return "canary-available"
	case StatusNewer:
		return "newer"
	}
	return "unknown"
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// VersionInfo merges the manifest declaration of a tracked package with the
// results of the installed and registry lookups. Nil means unknown.
type VersionInfo struct {
	Declared  *string `json:"declared"`
	Installed *string `json:"installed"`
	Latest    *string `json:"latest"`
	Canary    *string `json:"canary,omitempty"`
}

// PrereleasePackage is a manifest dependency declared on a prerelease version.
type PrereleasePackage struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	PrereleaseType string `json:"prerelease_type"`
}

// PrereleaseCheckResult is a PrereleasePackage checked against the registry.
type PrereleaseCheckResult struct {
	Name            string  `json:"name"`
	Installed       string  `json:"installed"`
	Latest          *string `json:"latest"`
	PrereleaseType  string  `json:"prerelease_type"`
	StableAvailable bool    `json:"stable_available"`
	Status          Status  `json:"status"`
}

// Member is a package taking part in a consistency check.
type Member struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ConsistencyCheck is the outcome of checking that a group of packages are
// declared on the same version.
type ConsistencyCheck struct {
	Name       string   `json:"name"`
	Packages   []Member `json:"packages"`
	Consistent bool     `json:"consistent"`
}
