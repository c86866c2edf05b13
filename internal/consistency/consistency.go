// Package consistency checks that families of related packages are declared
// on the same version.
package consistency

import (
	"strings"

	"github.com/git-pkgs/versioncheck/internal/core"
	"github.com/git-pkgs/versioncheck/internal/semver"
)

// Group names a family of packages that must be pinned in lockstep. Either
// Packages lists the members explicitly, or Prefix selects every manifest
// dependency starting with it, together with Base.
type Group struct {
	Name     string   `yaml:"name"`
	Packages []string `yaml:"packages,omitempty"`
	Prefix   string   `yaml:"prefix,omitempty"`
	Base     string   `yaml:"base,omitempty"`
}

// IsPrefix reports whether the group selects members by prefix.
func (g Group) IsPrefix() bool {
	return g.Prefix != ""
}

// CheckList checks the explicitly named packages. Names not declared in the
// manifest are left out rather than counted as mismatches.
func CheckList(m *core.Manifest, group string, names []string) core.ConsistencyCheck {
	return check(m, group, names)
}

// CheckPrefix checks base together with every declared package whose name
// starts with prefix.
func CheckPrefix(m *core.Manifest, group, prefix, base string) core.ConsistencyCheck {
	names := []string{base}
	for _, d := range m.All() {
		if strings.HasPrefix(d.Name, prefix) && d.Name != base {
			names = append(names, d.Name)
		}
	}
	return check(m, group, names)
}

// Check evaluates a single group.
func Check(m *core.Manifest, g Group) core.ConsistencyCheck {
	if g.IsPrefix() {
		return CheckPrefix(m, g.Name, g.Prefix, g.Base)
	}
	return CheckList(m, g.Name, g.Packages)
}

// Run evaluates groups in order.
func Run(m *core.Manifest, groups []Group) []core.ConsistencyCheck {
	checks := make([]core.ConsistencyCheck, 0, len(groups))
	for _, g := range groups {
		checks = append(checks, Check(m, g))
	}
	return checks
}

// AllConsistent reports whether every check passed.
func AllConsistent(checks []core.ConsistencyCheck) bool {
	for _, c := range checks {
		if !c.Consistent {
			return false
		}
	}
	return true
}

func check(m *core.Manifest, group string, names []string) core.ConsistencyCheck {
	members := make([]core.Member, 0, len(names))
	versions := make(map[string]struct{})

	for _, name := range names {
		declared, ok := m.Declared(name)
		if !ok {
			continue
		}
		members = append(members, core.Member{Name: name, Version: declared})
		versions[semver.StripRange(declared)] = struct{}{}
	}

	return core.ConsistencyCheck{
		Name:       group,
		Packages:   members,
		Consistent: len(versions) <= 1,
	}
}
