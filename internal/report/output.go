package report

import (
	"os"

	"github.com/muesli/termenv"
)

// ColorProfile returns the color profile of the terminal. NO_COLOR forces
// Ascii; otherwise the terminal's capabilities are detected.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI is ColorProfile for CI logs: plain ANSI unless NO_COLOR
// is set.
func ColorProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}
