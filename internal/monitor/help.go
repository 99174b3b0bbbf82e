package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)
)

// renderHelpOverlay renders a centered box listing every key binding.
func (m Model) renderHelpOverlay() string {
	h := m.help
	h.ShowAll = true

	lines := []string{
		helpTitleStyle.Render("Keyboard Shortcuts"),
		h.View(m.keys),
		"",
		LabelStyle.Render("Severity: OK normal · WARN warning · CRIT critical · N/A unavailable"),
		LabelStyle.Render("Press ? or esc to close"),
	}
	box := helpBoxStyle.Render(strings.Join(lines, "\n"))

	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
