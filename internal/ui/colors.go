package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors as ANSI codes, so they follow the terminal's own theme.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary lipgloss.Color = "7" // White/default
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)

// DisableColors switches every lipgloss style to plain text. Used for
// --no-color, NO_COLOR and tests that assert on rendered output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorsDisabled reports whether styles currently render without escapes.
func ColorsDisabled() bool {
	return lipgloss.ColorProfile() == termenv.Ascii
}
