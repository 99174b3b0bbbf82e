package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline draws the most recent width values of data as a sparkline
// in the given color. Values are scaled to the fixed 0-100 percent range, so
// a flat 5% line stays low instead of filling the middle of the graph.
func RenderSparkline(data []float64, width int, color lipgloss.TerminalColor) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	numLevels := len(sparklineBlockRunes)
	var sb strings.Builder
	sb.Grow(len(data) * 3)

	for _, v := range data {
		v = min(max(v, 0), 100)
		level := min(int(v/100*float64(numLevels-1)+0.5), numLevels-1)
		sb.WriteRune(sparklineBlockRunes[level])
	}

	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}
