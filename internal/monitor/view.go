package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// Below this size the dashboard switches to one summary line per family.
const (
	MinWidth  = 40
	MinHeight = 12
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 100

// RenderOptions carries the inputs of a frame that are not part of the
// snapshot.
type RenderOptions struct {
	Hostname   string
	Interval   time.Duration
	CPUHistory []float64
}

// Render draws one complete frame. It is pure: the same inputs always give
// the same output. A height of zero means unbounded (used by --once when
// stdout is not a terminal).
func Render(snap metrics.Snapshot, cls metrics.Classification, width, height int, opts RenderOptions) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if width < MinWidth || (height > 0 && height < MinHeight) {
		return renderDegraded(snap, cls, width, height)
	}

	header := renderHeader(snap, cls, width, opts)
	footer := renderFooter(width, opts.Interval, footerHints)

	budget := 0
	if height > 0 {
		budget = max(height-2, 1)
	}
	body := renderBody(snap, cls, width, budget, opts)
	return header + "\n" + body + "\n" + footer
}

// renderHeader renders "sysmon · host · time · round N · sampled in X · STATUS".
func renderHeader(snap metrics.Snapshot, cls metrics.Classification, width int, opts RenderOptions) string {
	title := TitleStyle.Render("sysmon")

	parts := []string{}
	if opts.Hostname != "" {
		parts = append(parts, opts.Hostname)
	}
	if !snap.Timestamp.IsZero() {
		parts = append(parts, snap.Timestamp.Format("2006-01-02 15:04:05"))
	}
	parts = append(parts,
		fmt.Sprintf("round %d", snap.Round),
		fmt.Sprintf("sampled in %s", snap.Duration.Round(time.Millisecond)))

	line := title + LabelStyle.Render(" · "+strings.Join(parts, " · "))
	if worst := cls.Worst(); worst.Badge() != "" {
		line += " " + Badge(worst)
	}
	return HeaderStyle.Render(ansi.Truncate(line, max(width-2, 1), "…"))
}

var footerHints = []string{"q quit", "r refresh", "↑↓ scroll", "? help"}

func renderFooter(width int, interval time.Duration, hints []string) string {
	text := strings.Join(hints, " · ")
	if interval > 0 {
		text += " · every " + interval.String()
	}
	return FooterStyle.Render(ansi.Truncate(text, max(width-2, 1), "…"))
}

// buildSections returns the dashboard sections in display order. Families
// disabled in config have no section.
func buildSections(snap metrics.Snapshot, cls metrics.Classification, opts RenderOptions) []section {
	var out []section
	if !snap.CPU.Disabled() {
		out = append(out, cpuSection(snap, cls, opts.CPUHistory))
	}
	if !snap.Memory.Disabled() {
		out = append(out, memorySection(snap, cls))
	}
	if !snap.Disk.Disabled() {
		out = append(out, diskSection(snap, cls))
	}
	if !snap.Services.Disabled() {
		out = append(out, servicesSection(snap, cls))
	}
	if !snap.Mounts.Disabled() {
		out = append(out, mountsSection(snap, cls))
	}
	if !snap.Logs.Disabled() {
		out = append(out, logsSection(snap))
	}
	return out
}

// renderBody lays the sections out in at most budget lines (0 = unbounded).
// Every section keeps at least one content row; when everything fits, the
// fill section (logs) absorbs the leftover height. If even the minimum does
// not fit, the body is taller than budget and the caller scrolls it.
func renderBody(snap metrics.Snapshot, cls metrics.Classification, width, budget int, opts RenderOptions) string {
	sections := buildSections(snap, cls, opts)
	rows := allocateRows(sections, budget)

	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.render(width, rows[i])
	}
	return strings.Join(parts, "\n")
}

// allocateRows decides how many content rows each section may show.
func allocateRows(sections []section, budget int) []int {
	rows := make([]int, len(sections))
	if budget <= 0 {
		return rows
	}

	// Every section gets its borders plus one row.
	remaining := budget
	for i := range sections {
		rows[i] = 1
		remaining -= 3
	}

	// Hand out the rest in display order, fill sections last.
	for pass := 0; pass < 2; pass++ {
		for i, s := range sections {
			if s.fill != (pass == 1) || remaining <= 0 {
				continue
			}
			extra := min(len(s.rows)-rows[i], remaining)
			if extra > 0 {
				rows[i] += extra
				remaining -= extra
			}
		}
	}
	return rows
}

// renderDegraded renders one summary line per family for terminals below
// the minimum size.
func renderDegraded(snap metrics.Snapshot, cls metrics.Classification, width, height int) string {
	lines := []string{TitleStyle.Render("sysmon") + MutedStyle.Render(fmt.Sprintf(" #%d", snap.Round))}

	if !snap.CPU.Disabled() {
		lines = append(lines, summaryLine("CPU", snap.CPU.Failure, func() string {
			return fmt.Sprintf("%.1f%%", snap.CPU.Value.UsagePercent)
		}, cls.CPU))
	}
	if !snap.Memory.Disabled() {
		lines = append(lines, summaryLine("MEM", snap.Memory.Failure, func() string {
			return fmt.Sprintf("%.1f%%", snap.Memory.Value.UsagePercent())
		}, cls.Memory))
	}
	if !snap.Disk.Disabled() {
		lines = append(lines, summaryLine("DSK", snap.Disk.Failure, func() string {
			parts := make([]string, 0, len(snap.Disk.Value))
			for _, d := range snap.Disk.Value {
				if d.Err != "" {
					parts = append(parts, d.Path+" n/a")
					continue
				}
				parts = append(parts, fmt.Sprintf("%s %.0f%%", d.Path, d.UsagePercent))
			}
			return strings.Join(parts, " ")
		}, worstOfMap(cls.Disks)))
	}
	if !snap.Services.Disabled() {
		lines = append(lines, summaryLine("SVC", snap.Services.Failure, func() string {
			up := 0
			for _, s := range snap.Services.Value {
				if s.Running {
					up++
				}
			}
			return fmt.Sprintf("%d/%d up", up, len(snap.Services.Value))
		}, worstOfMap(cls.Services)))
	}
	if !snap.Mounts.Disabled() {
		lines = append(lines, summaryLine("MNT", snap.Mounts.Failure, func() string {
			return fmt.Sprintf("%d mounted", len(snap.Mounts.Value))
		}, worstOfMap(cls.Mounts)))
	}
	if !snap.Logs.Disabled() {
		lines = append(lines, summaryLine("LOG", snap.Logs.Failure, func() string {
			if len(snap.Logs.Value) == 0 {
				return "none"
			}
			return snap.Logs.Value[0].Message
		}, metrics.SeverityNone))
	}

	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "…")
	}
	return strings.Join(lines, "\n")
}

func summaryLine(label string, failure *metrics.SourceFailure, value func() string, sev metrics.Severity) string {
	line := LabelStyle.Render(label) + " "
	if failure != nil {
		return line + UnavailableStyle.Render("n/a ("+failure.Label()+")")
	}
	line += SeverityStyle(sev).Render(value())
	if b := Badge(sev); b != "" {
		line += " " + b
	}
	return line
}

func worstOfMap(m map[string]metrics.Severity) metrics.Severity {
	sevs := make([]metrics.Severity, 0, len(m))
	for _, s := range m {
		sevs = append(sevs, s)
	}
	return metrics.WorstOf(sevs...)
}

// renderWaiting is shown before the first snapshot arrives.
func renderWaiting(spinnerView string, width, height int) string {
	msg := spinnerView + " " + LabelStyle.Render("sampling…")
	if width <= 0 || height <= 0 {
		return msg
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
}
