package report

import "github.com/charmbracelet/lipgloss"

// ANSI palette indexes.
var (
	red     = lipgloss.Color("1")
	green   = lipgloss.Color("2")
	yellow  = lipgloss.Color("3")
	blue    = lipgloss.Color("4")
	magenta = lipgloss.Color("5")
	cyan    = lipgloss.Color("6")
	white   = lipgloss.Color("7")
)

// Badges.
const (
	badgeUpgrade        = "⚠️  UPDATE AVAILABLE"
	badgeStable         = "🚨 STABLE RELEASE AVAILABLE - UPDATE NOW"
	badgeCanary         = "📦 newer canary available"
	badgeAhead          = "🔮 (ahead of stable)"
	badgeOK             = "✅"
	badgeFail           = "❌"
	badgeStableShort    = "🚨 STABLE AVAILABLE"
	titleStableList     = "📦 Stable upgrades available:"
	titlePrereleaseList = "🔄 Stable releases for prerelease packages:"
)

const bannerWidth = 50

type palette struct {
	dim       lipgloss.Style
	title     lipgloss.Style
	name      lipgloss.Style
	value     lipgloss.Style
	pkg       lipgloss.Style
	version   lipgloss.Style
	link      lipgloss.Style
	bold      lipgloss.Style
	ok        lipgloss.Style
	okBold    lipgloss.Style
	fail      lipgloss.Style
	failBold  lipgloss.Style
	warn      lipgloss.Style
	warnBold  lipgloss.Style
	info      lipgloss.Style
	ahead     lipgloss.Style
	aheadBold lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	s := r.NewStyle()
	return palette{
		dim:       s.Faint(true),
		title:     s.Bold(true).Foreground(white),
		name:      s.Bold(true).Foreground(cyan),
		value:     s.Foreground(white),
		pkg:       s.Foreground(cyan),
		version:   s.Foreground(yellow),
		link:      s.Faint(true).Underline(true),
		bold:      s.Bold(true),
		ok:        s.Foreground(green),
		okBold:    s.Bold(true).Foreground(green),
		fail:      s.Foreground(red),
		failBold:  s.Bold(true).Foreground(red),
		warn:      s.Foreground(yellow),
		warnBold:  s.Bold(true).Foreground(yellow),
		info:      s.Foreground(blue),
		ahead:     s.Foreground(magenta),
		aheadBold: s.Bold(true).Foreground(magenta),
	}
}
