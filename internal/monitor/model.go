package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/rileyhilliard/sysmon/internal/ui"
)

// SnapshotMsg delivers a completed sampling round to the dashboard.
type SnapshotMsg metrics.Snapshot

// ModelConfig holds what the dashboard needs besides snapshots.
type ModelConfig struct {
	Thresholds metrics.Thresholds
	Interval   time.Duration
	Hostname   string
	// Refresh asks the scheduler for an immediate round.
	Refresh func()
	// Cancel stops sampling when the user quits.
	Cancel func()
}

// Model is the Bubble Tea model for the dashboard. It holds the most recent
// completed snapshot and its classification; everything on screen is derived
// from those two values.
type Model struct {
	thresholds metrics.Thresholds
	interval   time.Duration
	hostname   string
	refresh    func()
	cancel     func()

	snap    *metrics.Snapshot
	cls     metrics.Classification
	history *History

	width  int
	height int

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	showHelp bool
	quitting bool
}

// Header and footer take one line each.
const chromeHeight = 2

// NewModel creates the dashboard model.
func NewModel(cfg ModelConfig) Model {
	if cfg.Thresholds == nil {
		cfg.Thresholds = metrics.DefaultThresholds()
	}

	sp := spinner.New()
	sp.Spinner = ui.SpinnerFrames
	sp.Style = TitleStyle

	h := help.New()
	h.ShortSeparator = " · "

	return Model{
		thresholds: cfg.Thresholds,
		interval:   cfg.Interval,
		hostname:   cfg.Hostname,
		refresh:    cfg.Refresh,
		cancel:     cfg.Cancel,
		history:    NewHistory(DefaultHistorySize),
		viewport:   viewport.New(DefaultWidth, 1),
		spinner:    sp,
		help:       h,
		keys:       DefaultKeyMap(),
	}
}

// Init starts the waiting spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = max(msg.Width-2, 1)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.updateViewportContent()

	case SnapshotMsg:
		snap := metrics.Snapshot(msg)
		// Rounds are totally ordered; a late older round never replaces a
		// newer one.
		if m.snap != nil && snap.Round <= m.snap.Round {
			return m, nil
		}
		m.snap = &snap
		m.cls = metrics.ClassifySnapshot(snap, m.thresholds)
		m.history.Push(snap)
		m.updateViewportContent()

	case spinner.TickMsg:
		// The spinner only runs until the first snapshot arrives.
		if m.snap != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the whole frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.snap == nil {
		return renderWaiting(m.spinner.View(), m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.width < MinWidth || m.height < MinHeight {
		return renderDegraded(*m.snap, m.cls, m.width, m.height)
	}

	footer := m.help.View(m.keys)
	if m.interval > 0 {
		footer += MutedStyle.Render(" · every " + m.interval.String())
	}
	footer = ansi.Truncate(footer, max(m.width-2, 1), "…")
	return renderHeader(*m.snap, m.cls, m.width, m.renderOptions()) + "\n" +
		m.viewport.View() + "\n" +
		FooterStyle.Render(footer)
}

// Snapshot returns the snapshot on screen, if any.
func (m Model) Snapshot() (metrics.Snapshot, bool) {
	if m.snap == nil {
		return metrics.Snapshot{}, false
	}
	return *m.snap, true
}

// Classification returns the classification of the snapshot on screen.
func (m Model) Classification() metrics.Classification {
	return m.cls
}

func (m Model) renderOptions() RenderOptions {
	return RenderOptions{
		Hostname:   m.hostname,
		Interval:   m.interval,
		CPUHistory: m.history.CPU(DefaultHistorySize),
	}
}

// updateViewportContent re-lays out the body for the current size and
// snapshot. The scroll position is kept where possible.
func (m *Model) updateViewportContent() {
	if m.snap == nil || m.width == 0 {
		return
	}
	body := renderBody(*m.snap, m.cls, m.width, m.viewport.Height, m.renderOptions())
	m.viewport.SetContent(body)
}
