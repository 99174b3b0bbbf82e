// Package monitor implements the sampling loop and the terminal dashboard.
//
// # Sampling
//
// A Sampler runs every metric source of one round in parallel. Each source
// is wrapped so that an error, a timeout or a panic becomes a SourceFailure
// for its own family; the round always completes with a full Snapshot.
//
// The Scheduler runs rounds at a fixed cadence measured from round start:
//
//	NextDelay(interval, elapsed) = max(0, interval - elapsed)
//
// so a round that overruns its interval is followed immediately by the next
// one. Completed snapshots are handed to an emit callback, which the CLI
// wires to tea.Program.Send. Nothing is emitted once the context is done.
//
// # Dashboard
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: the most recent snapshot, its classification and the layout
//   - Update: key presses, window resizes and SnapshotMsg
//   - View: a whole-frame repaint on the alternate screen
//
// Render is the pure form of the view: given a snapshot, a classification
// and a size it always produces the same frame. `sysmon --once` prints it
// directly.
//
// Sections overflowing their share of the height end in a "… N more"
// marker; the log section absorbs whatever height is left. Below 40x12 the
// dashboard falls back to one summary line per family.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Sample now
//	↑/↓, j/k    - Scroll
//	PgUp/PgDn   - Scroll a page
//	?           - Toggle help overlay
package monitor
