package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/rileyhilliard/sysmon/internal/ui"
)

// section is one bordered block of the dashboard body.
type section struct {
	title string
	value string // right side of the header, already styled
	rows  []string
	// fill marks the section that absorbs the remaining height.
	fill bool
}

const (
	barWidth   = 20
	labelWidth = 14
)

// formatBytes formats a byte count with binary units, e.g. "1.5 GiB".
func formatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// FormatRate formats a bytes-per-second rate, e.g. "512 KiB/s".
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%5.1f%%", p)
}

// FormatLatency renders a probe response time, e.g. "12ms".
func FormatLatency(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}

// unavailable renders the placeholder for a value that could not be sampled.
func unavailable(f *metrics.SourceFailure) string {
	if f == nil {
		return UnavailableStyle.Render("unavailable")
	}
	msg := f.Message
	if msg == "" {
		msg = f.Label()
	}
	return UnavailableStyle.Render(fmt.Sprintf("unavailable (%s: %s)", f.Kind, msg))
}

// usageLine renders "label  ▰▰▰▱▱  42.0% OK  detail".
func usageLine(label string, pct float64, sev metrics.Severity, detail string) string {
	line := LabelStyle.Render(padRight(label, labelWidth)) + " " +
		ProgressBar(barWidth, pct, sev) + " " +
		SeverityStyle(sev).Render(formatPercent(pct))
	if b := Badge(sev); b != "" {
		line += " " + b
	}
	if detail != "" {
		line += "  " + MutedStyle.Render(detail)
	}
	return line
}

// headerValue renders the right side of a section header.
func headerValue(text string, sev metrics.Severity) string {
	if b := Badge(sev); b != "" {
		return SeverityStyle(sev).Render(text + " " + b)
	}
	return ValueStyle.Render(text)
}

func cpuSection(snap metrics.Snapshot, cls metrics.Classification, history []float64) section {
	s := section{title: "CPU"}
	if !snap.CPU.Available() {
		s.value = Badge(metrics.SeverityUnknown)
		s.rows = []string{unavailable(snap.CPU.Failure)}
		return s
	}

	c := snap.CPU.Value
	s.value = headerValue(strings.TrimSpace(formatPercent(c.UsagePercent)), cls.CPU)

	details := []string{fmt.Sprintf("%d cores", c.Cores)}
	if c.FrequencyMHz > 0 {
		details = append(details, fmt.Sprintf("%.0f MHz", c.FrequencyMHz))
	}
	s.rows = append(s.rows,
		usageLine("usage", c.UsagePercent, cls.CPU, strings.Join(details, " · ")),
		LabelStyle.Render(padRight("load", labelWidth))+" "+
			ValueStyle.Render(fmt.Sprintf("%.2f %.2f %.2f", c.LoadAvg[0], c.LoadAvg[1], c.LoadAvg[2])),
	)
	if len(history) > 1 {
		s.rows = append(s.rows, LabelStyle.Render(padRight("history", labelWidth))+" "+
			ui.RenderSparkline(history, barWidth*2, SeverityColor(cls.CPU)))
	}
	return s
}

func memorySection(snap metrics.Snapshot, cls metrics.Classification) section {
	s := section{title: "Memory"}
	if !snap.Memory.Available() {
		s.value = Badge(metrics.SeverityUnknown)
		s.rows = []string{unavailable(snap.Memory.Failure)}
		return s
	}

	m := snap.Memory.Value
	s.value = headerValue(strings.TrimSpace(formatPercent(m.UsagePercent())), cls.Memory)
	s.rows = append(s.rows, usageLine("ram", m.UsagePercent(), cls.Memory,
		fmt.Sprintf("%s / %s", formatBytes(m.UsedBytes), formatBytes(m.TotalBytes))))

	if m.SwapTotalBytes == 0 {
		s.rows = append(s.rows, LabelStyle.Render(padRight("swap", labelWidth))+" "+MutedStyle.Render("none"))
	} else {
		s.rows = append(s.rows, usageLine("swap", m.SwapPercent(), cls.Swap,
			fmt.Sprintf("%s / %s", formatBytes(m.SwapUsedBytes), formatBytes(m.SwapTotalBytes))))
	}
	return s
}

func diskSection(snap metrics.Snapshot, cls metrics.Classification) section {
	s := section{title: "Disk"}
	if !snap.Disk.Available() {
		s.value = Badge(metrics.SeverityUnknown)
		s.rows = []string{unavailable(snap.Disk.Failure)}
		return s
	}

	worst := metrics.SeverityNone
	for _, d := range snap.Disk.Value {
		sev := cls.Disks[d.Path]
		worst = metrics.WorstOf(worst, sev)

		if d.Err != "" {
			s.rows = append(s.rows, LabelStyle.Render(padRight(d.Path, labelWidth))+" "+
				UnavailableStyle.Render("unavailable ("+d.Err+")"))
			continue
		}

		io := "I/O n/a"
		if d.IOAvailable {
			io = fmt.Sprintf("R %s W %s", FormatRate(d.ReadBytesPerSec), FormatRate(d.WriteBytesPerSec))
		}
		s.rows = append(s.rows, usageLine(d.Path, d.UsagePercent, sev,
			fmt.Sprintf("%s / %s · %s", formatBytes(d.UsedBytes), formatBytes(d.TotalBytes), io)))
	}
	if len(snap.Disk.Value) == 0 {
		s.rows = []string{MutedStyle.Render("no paths configured")}
	}
	s.value = headerValue(fmt.Sprintf("%d paths", len(snap.Disk.Value)), worst)
	return s
}

func mountsSection(snap metrics.Snapshot, cls metrics.Classification) section {
	s := section{title: "Mounts"}
	if !snap.Mounts.Available() {
		s.value = Badge(metrics.SeverityUnknown)
		s.rows = []string{unavailable(snap.Mounts.Failure)}
		return s
	}

	worst := metrics.SeverityNone
	for _, m := range snap.Mounts.Value {
		sev := cls.Mounts[m.Path]
		worst = metrics.WorstOf(worst, sev)

		fs := MutedStyle.Render(padRight(m.FSType, 6)) + " " + MutedStyle.Render(m.Device)
		if m.Err != "" {
			s.rows = append(s.rows, LabelStyle.Render(padRight(m.Path, labelWidth))+" "+
				UnavailableStyle.Render("unavailable ("+m.Err+")")+"  "+fs)
			continue
		}
		s.rows = append(s.rows, usageLine(m.Path, m.UsagePercent, sev,
			fmt.Sprintf("%s / %s", formatBytes(m.UsedBytes), formatBytes(m.TotalBytes)))+"  "+fs)
	}
	if len(snap.Mounts.Value) == 0 {
		s.rows = []string{MutedStyle.Render("no block device mounts")}
	}
	s.value = headerValue(fmt.Sprintf("%d mounted", len(snap.Mounts.Value)), worst)
	return s
}

func servicesSection(snap metrics.Snapshot, cls metrics.Classification) section {
	s := section{title: "Services"}
	if !snap.Services.Available() {
		s.value = Badge(metrics.SeverityUnknown)
		s.rows = []string{unavailable(snap.Services.Failure)}
		return s
	}

	up := 0
	worst := metrics.SeverityNone
	for _, svc := range snap.Services.Value {
		sev := cls.Services[svc.Name]
		worst = metrics.WorstOf(worst, sev)

		kind := MutedStyle.Render(padRight(string(svc.Kind), 8))
		if !svc.Running {
			reason := svc.LastError
			if reason == "" {
				reason = "not running"
			}
			s.rows = append(s.rows, CriticalStyle.Render(SymbolDown)+" "+
				ValueStyle.Render(padRight(svc.Name, labelWidth))+" "+kind+" "+
				SeverityStyle(sev).Render("DOWN")+" "+MutedStyle.Render(reason))
			continue
		}

		up++
		latency := "-"
		if svc.ResponseTime != nil {
			latency = FormatLatency(*svc.ResponseTime)
		}
		line := NormalStyle.Render(SymbolUp) + " " +
			ValueStyle.Render(padRight(svc.Name, labelWidth)) + " " + kind + " " +
			SeverityStyle(sev).Render(padRight(latency, 7))
		if b := Badge(sev); b != "" {
			line += " " + b
		}
		if svc.Detail != "" {
			line += "  " + MutedStyle.Render(svc.Detail)
		}
		s.rows = append(s.rows, line)
	}
	if len(snap.Services.Value) == 0 {
		s.rows = []string{MutedStyle.Render("no services configured")}
	}
	s.value = headerValue(fmt.Sprintf("%d/%d up", up, len(snap.Services.Value)), worst)
	return s
}

func logsSection(snap metrics.Snapshot) section {
	s := section{title: "Logs", fill: true}
	if !snap.Logs.Available() {
		s.value = Badge(metrics.SeverityUnknown)
		s.rows = []string{unavailable(snap.Logs.Failure)}
		return s
	}

	for _, e := range snap.Logs.Value {
		ts := "--:--:--"
		if !e.Time.IsZero() {
			ts = e.Time.Format("15:04:05")
		}
		s.rows = append(s.rows, MutedStyle.Render(ts)+" "+
			PriorityStyle(e.Priority).Render(padRight(e.PriorityName(), 7))+" "+
			LabelStyle.Render(e.Unit)+" "+ValueStyle.Render(e.Message))
	}
	if len(s.rows) == 0 {
		s.rows = []string{MutedStyle.Render("no recent entries")}
	}
	s.value = ValueStyle.Render(fmt.Sprintf("%d recent", len(snap.Logs.Value)))
	return s
}

// render draws the section with at most rows content lines (rows <= 0 means
// all of them). Hidden rows are replaced by a "… N more" marker.
func (s section) render(width, rows int) string {
	shown := s.rows
	if rows > 0 && len(s.rows) > rows {
		keep := rows - 1
		shown = append(append([]string{}, s.rows[:keep]...),
			MutedStyle.Render(fmt.Sprintf("… %d more", len(s.rows)-keep)))
	}

	lines := make([]string, 0, len(shown)+2)
	lines = append(lines, SectionHeader(s.title, s.value, width))
	for _, r := range shown {
		lines = append(lines, SectionContentLine(r, width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}
