package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolWarn    = "!"
	SymbolPending = "○"
	SymbolSkipped = "⊘"
)

// SpinnerFrames is the spinner shown while the dashboard waits for data.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}
