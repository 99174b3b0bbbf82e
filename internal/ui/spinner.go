package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner shows an animated "label…" line while a single blocking task
// runs, then replaces it with a final ✓ or ✗ line and the elapsed time.
// Without animation only the final line is written, which keeps pipes and
// log files clean.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	animate bool

	frame     int
	start     time.Time
	lastWidth int
	running   bool
	stop      chan struct{}
	done      chan struct{}
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, label string, animate bool) *Spinner {
	return &Spinner{w: w, label: label, animate: animate}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.start = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	if !s.animate {
		close(s.done)
		return
	}
	s.render()
	go s.loop()
}

// Success stops the spinner with a ✓ line.
func (s *Spinner) Success() {
	s.finish(lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess))
}

// Fail stops the spinner with a ✗ line.
func (s *Spinner) Fail() {
	s.finish(lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail))
}

func (s *Spinner) loop() {
	ticker := time.NewTicker(SpinnerFrames.FPS)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(SpinnerFrames.Frames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := lipgloss.NewStyle().Foreground(ColorInfo).Render(SpinnerFrames.Frames[s.frame])
	line := frame + " " + s.label + "…"
	s.clearLocked()
	fmt.Fprint(s.w, line)
	s.lastWidth = lipgloss.Width(line)
}

func (s *Spinner) finish(symbol string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	timing := lipgloss.NewStyle().Foreground(ColorMuted).Render(FormatDuration(time.Since(s.start)))
	fmt.Fprintf(s.w, "%s %s %s\n", symbol, s.label, timing)
}

// clearLocked blanks the current animation line.
func (s *Spinner) clearLocked() {
	if s.lastWidth == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastWidth)+"\r")
	s.lastWidth = 0
}

// FormatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
