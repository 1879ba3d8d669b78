// Package styles provides the colors, icons and composed lipgloss styles
// used by sitectl's terminal output.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Green  = lipgloss.Color("#00cc6a")
	Cyan   = lipgloss.Color("#00a0cc")
	Yellow = lipgloss.Color("#fbbf24")

	Neutral200 = lipgloss.Color("#e5e5e5")
	Neutral500 = lipgloss.Color("#737373")
	Neutral700 = lipgloss.Color("#404040")
	Black      = lipgloss.Color("#000000")

	// Semantic colors
	ColorPrimary = Green
	ColorSuccess = Green
	ColorWarning = Yellow
	ColorInfo    = Cyan

	ColorText      = Neutral200
	ColorTextMuted = Neutral500
	ColorBorder    = Neutral700
	ColorBg        = Black
)
