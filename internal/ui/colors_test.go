package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestDisableColors(t *testing.T) {
	prev := lipgloss.ColorProfile()
	defer lipgloss.SetColorProfile(prev)

	lipgloss.SetColorProfile(termenv.ANSI256)
	assert.False(t, ColorsDisabled())

	DisableColors()
	assert.True(t, ColorsDisabled())
	assert.Equal(t, "ok", lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true).Render("ok"))
}
