package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	// Unknown values are faint so they read as "no data" rather than "fine".
	UnavailableStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Faint(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	CriticalStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true).
			Reverse(true)

	borderStyle = lipgloss.NewStyle().Foreground(ColorBorder)
)

// Status glyphs for services.
const (
	SymbolUp   = "●"
	SymbolDown = "✗"
)

// SeverityStyle returns the style for text classified as sev.
func SeverityStyle(sev metrics.Severity) lipgloss.Style {
	switch sev {
	case metrics.SeverityNormal:
		return NormalStyle
	case metrics.SeverityWarning:
		return WarningStyle
	case metrics.SeverityCritical:
		return CriticalStyle
	case metrics.SeverityUnknown:
		return UnavailableStyle
	default:
		return ValueStyle
	}
}

// SeverityColor returns the bar color for sev.
func SeverityColor(sev metrics.Severity) lipgloss.Color {
	switch sev {
	case metrics.SeverityWarning:
		return ColorWarning
	case metrics.SeverityCritical:
		return ColorCritical
	case metrics.SeverityUnknown:
		return ColorTextMuted
	case metrics.SeverityNormal:
		return ColorHealthy
	default:
		return ColorGraph
	}
}

// Badge renders the severity tag, e.g. "CRIT". Values without a threshold
// get no badge.
func Badge(sev metrics.Severity) string {
	b := sev.Badge()
	if b == "" {
		return ""
	}
	return SeverityStyle(sev).Render(b)
}

// PriorityStyle colors a journal priority: err and worse red, warning amber,
// the rest muted.
func PriorityStyle(priority int) lipgloss.Style {
	switch {
	case priority <= 3:
		return lipgloss.NewStyle().Foreground(ColorCritical)
	case priority == 4:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return MutedStyle
	}
}

// ProgressBar renders a bar of the given width filled to percent, colored by
// severity.
func ProgressBar(width int, percent float64, sev metrics.Severity) string {
	if width < 1 {
		width = 1
	}
	percent = min(max(percent, 0), 100)

	filled := min(int(percent/100.0*float64(width)), width)
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(SeverityColor(sev)).Render(bar)
}

// SectionHeader renders the top border of a section with the title on the
// left and value on the right.
// Format: ╭─ Title ──────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	if value == "" {
		rightWidth = 1
	}

	fillWidth := max(width-leftWidth-rightWidth, 1)
	middle := strings.Repeat("─", fillWidth)

	if value == "" {
		return borderStyle.Render("╭─ ") + TitleStyle.Render(title) + borderStyle.Render(" "+middle+"╮")
	}
	return borderStyle.Render("╭─ ") +
		TitleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		value +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return borderStyle.Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a bordered content line padded to width.
// Content wider than the section is truncated with an ellipsis.
// Format: │ content                                  │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}
	innerWidth := width - 4

	if lipgloss.Width(content) > innerWidth {
		content = ansi.Truncate(content, innerWidth, "…")
	}
	padding := max(innerWidth-lipgloss.Width(content), 0)

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}

// padRight pads plain text to width display cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
