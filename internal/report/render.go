package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/git-pkgs/versioncheck/internal/core"
)

// Renderer writes reports as colourised text.
type Renderer struct {
	w     io.Writer
	color bool
	p     palette
	err   error
}

// NewRenderer returns a Renderer writing to w with the given color profile.
// termenv.Ascii disables styling altogether.
func NewRenderer(w io.Writer, profile termenv.Profile) *Renderer {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(profile)
	return &Renderer{
		w:     w,
		color: profile != termenv.Ascii,
		p:     newPalette(lr),
	}
}

// Progress announces that registry lookups are under way.
func (r *Renderer) Progress() error {
	r.err = nil
	r.line(r.paint(r.p.dim, "Fetching version information..."))
	r.line()
	return r.err
}

// Render writes the report. Fast reports show consistency and the declared
// prereleases; full reports add tracked packages, prerelease checks, release
// pages and the upgrade summary.
func (r *Renderer) Render(rep *Report) error {
	r.err = nil
	if rep.Mode == Fast {
		r.renderFast(rep)
	} else {
		r.renderFull(rep)
	}
	return r.err
}

func (r *Renderer) renderFast(rep *Report) {
	r.banner(r.paint(r.p.title, "VERSION CONSISTENCY ") + r.paint(r.p.dim, "(fast mode)"))
	r.consistency(rep.Consistency)

	if len(rep.Prereleases) > 0 {
		r.line()
		r.banner(r.paint(r.p.aheadBold, "PRERELEASE PACKAGES"))
		r.line(r.paint(r.p.info, "ℹ️  The following packages are on prerelease versions:"))
		for _, pkg := range rep.Prereleases {
			r.line("   ",
				r.paint(r.p.pkg, pad(pkg.Name, 25)), " ",
				r.paint(r.p.version, pkg.Version), " ",
				r.paint(r.p.dim, "("+pkg.PrereleaseType+")"))
		}
		r.line()
		r.line(r.paint(r.p.dim, "Run full check (without --consistency-only) to see if stable versions are available."))
	}

	if !rep.Consistent() {
		r.failure(rep.Consistency)
		return
	}
	r.line()
	r.line(r.paint(r.p.okBold, "✅ All consistency checks passed"))
	r.line()
}

func (r *Renderer) renderFull(rep *Report) {
	r.banner(r.paint(r.p.title, "VERSION CHECK"))
	for i, pkg := range rep.Packages {
		if i > 0 {
			r.line()
		}
		r.pkgBlock(pkg)
	}

	if len(rep.PrereleaseResults) > 0 {
		r.line()
		r.banner(r.paint(r.p.aheadBold, "PRERELEASE PACKAGES"))
		for _, res := range rep.PrereleaseResults {
			r.line(
				r.paint(r.p.pkg, pad(res.Name, 25)), " ",
				r.paint(r.p.version, pad(res.Installed, 20)), " ",
				r.paint(r.p.dim, "latest:"), " ",
				r.paint(r.p.value, pad(orElse(res.Latest, "unknown"), 15)), " ",
				r.prereleaseBadge(res))
		}
	}

	r.line()
	r.banner(r.paint(r.p.title, "VERSION CONSISTENCY"))
	r.consistency(rep.Consistency)

	if len(rep.ReleasePages) > 0 {
		r.line()
		r.rule()
		r.line("  ", r.paint(r.p.title, "Release pages:"))
		r.rule()
		for _, page := range rep.ReleasePages {
			label := page.Label + ":"
			r.line("  ", r.paint(r.p.pkg, label), strings.Repeat(" ", max(12-len(label), 0)), " ", r.paint(r.p.link, page.URL))
		}
	}
	r.line()

	if rep.HasUpgrades() {
		r.banner(r.paint(r.p.warnBold, "UPGRADE SUMMARY"))
		r.upgrades(r.p.warn, titleStableList, rep.Summary.Stable)
		r.upgrades(r.p.ahead, titlePrereleaseList, rep.Summary.FromPrerelease)
		if rep.UpdateCommand != "" {
			r.line(r.paint(r.p.dim, "Run:"), " ", r.paint(r.p.value, rep.UpdateCommand))
		}
		r.line()
	}

	if !rep.Consistent() {
		r.failure(rep.Consistency)
		return
	}
	r.line(r.paint(r.p.okBold, "✅ All version checks passed"))
	r.line()
}

func (r *Renderer) pkgBlock(pkg Package) {
	indent := pad("", 12)
	r.line(
		r.paint(r.p.name, pad(pkg.Name, 12)), " ",
		r.paint(r.p.dim, "package.json:"), " ",
		r.paint(r.p.value, pad(orElse(pkg.Declared, "not specified"), 20)))
	r.line(
		indent, " ",
		r.paint(r.p.dim, "installed:"), "    ",
		r.paint(r.p.value, pad(orElse(pkg.Installed, "not installed"), 20)), " ",
		r.paint(r.p.dim, "latest:"), " ",
		r.paint(r.p.value, orElse(pkg.Latest, "unknown")), " ",
		r.statusBadge(pkg.Status))

	if pkg.ShowCanary && pkg.Canary != nil && *pkg.Canary != "" {
		r.line(indent, " ", pad("", 35), " ", r.paint(r.p.dim, "canary:"), " ", r.paint(r.p.dim, *pkg.Canary))
	}
}

func (r *Renderer) statusBadge(s core.Status) string {
	switch s {
	case core.StatusUpgradeAvailable:
		return r.paint(r.p.warn, badgeUpgrade)
	case core.StatusStableAvailable:
		return r.paint(r.p.failBold, badgeStable)
	case core.StatusCanaryAvailable:
		return r.paint(r.p.info, badgeCanary)
	case core.StatusNewer:
		return r.paint(r.p.ahead, badgeAhead)
	default:
		return r.paint(r.p.ok, badgeOK)
	}
}

func (r *Renderer) prereleaseBadge(res core.PrereleaseCheckResult) string {
	switch {
	case res.StableAvailable:
		return r.paint(r.p.failBold, badgeStableShort)
	case res.Status == core.StatusNewer:
		return r.paint(r.p.ahead, badgeAhead)
	default:
		return r.paint(r.p.ok, badgeOK)
	}
}

func (r *Renderer) consistency(checks []core.ConsistencyCheck) {
	for _, c := range checks {
		if c.Consistent {
			r.line(r.paint(r.p.ok, badgeOK), " ", r.paint(r.p.bold, c.Name), ": ", r.paint(r.p.dim, "all packages on same version"))
			continue
		}
		r.line(r.paint(r.p.fail, badgeFail), " ", r.paint(r.p.bold, c.Name), ": ", r.paint(r.p.failBold, "VERSION MISMATCH"))
		r.members("   ", c.Packages)
	}
}

func (r *Renderer) failure(checks []core.ConsistencyCheck) {
	r.line()
	r.line(r.paint(r.p.failBold, "❌ VERSION CHECK FAILED: Package version mismatches detected"))
	r.line()
	for _, c := range checks {
		if c.Consistent {
			continue
		}
		r.line("   ", r.paint(r.p.bold, c.Name), ":")
		r.members("     ", c.Packages)
		r.line()
	}
	r.line(r.paint(r.p.dim, "   All packages in a group must be on the same version."))
	r.line(r.paint(r.p.dim, "   Fix the mismatches above before committing."))
	r.line()
}

func (r *Renderer) members(indent string, members []core.Member) {
	for _, m := range members {
		r.line(indent, r.paint(r.p.dim, pad(m.Name, 35)), " ", r.paint(r.p.version, m.Version))
	}
}

func (r *Renderer) upgrades(style lipgloss.Style, title string, items []Upgrade) {
	if len(items) == 0 {
		return
	}
	r.line(r.paint(style, title))
	for _, u := range items {
		suffix := ""
		if u.Suffix != "" {
			suffix = " " + r.paint(r.p.dim, u.Suffix)
		}
		r.line("   ",
			r.paint(r.p.pkg, pad(u.Name, 15)), " ",
			r.paint(r.p.dim, u.From), " ",
			r.paint(r.p.warn, "→"), " ",
			r.paint(r.p.ok, u.To), suffix)
	}
	r.line()
}

// banner writes heading between two rules, followed by a blank line.
func (r *Renderer) banner(heading string) {
	r.rule()
	r.line("  ", heading)
	r.rule()
	r.line()
}

func (r *Renderer) rule() {
	r.line(r.paint(r.p.dim, strings.Repeat("═", bannerWidth)))
}

func (r *Renderer) paint(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// line writes parts followed by a newline. The first write error sticks.
func (r *Renderer) line(parts ...string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, strings.Join(parts, "")+"\n")
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func orElse(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
