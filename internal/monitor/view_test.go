package monitor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gib = 1 << 30

func testSnapshot() metrics.Snapshot {
	fast := 12 * time.Millisecond
	ts := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	return metrics.Snapshot{
		Round:     7,
		Timestamp: ts,
		Duration:  120 * time.Millisecond,
		CPU: metrics.OK(metrics.CPUMetrics{
			UsagePercent: 95, Cores: 8, FrequencyMHz: 2400, LoadAvg: [3]float64{3.2, 2.1, 1},
		}),
		Memory: metrics.OK(metrics.MemoryMetrics{
			TotalBytes: 16 * gib, UsedBytes: 8 * gib, AvailableBytes: 8 * gib,
		}),
		Disk: metrics.OK([]metrics.DiskMetrics{{
			Path: "/", Device: "/dev/sda1", UsagePercent: 40,
			TotalBytes: 100 * gib, UsedBytes: 40 * gib, IOAvailable: true, ReadBytesPerSec: 2048,
		}}),
		Services: metrics.OK([]metrics.ServiceStatus{
			{Name: "web-server", Kind: metrics.ServiceHTTP, Target: "http://localhost:80", LastError: "connection refused"},
			{Name: "database", Kind: metrics.ServiceTCP, Target: "localhost:5432", Running: true, ResponseTime: &fast, Detail: "connected"},
			{Name: "cache-service", Kind: metrics.ServiceTCP, Target: "localhost:6379", Running: true, ResponseTime: &fast, Detail: "connected"},
		}),
		Mounts: metrics.OK([]metrics.MountInfo{{
			Path: "/", Device: "/dev/sda1", FSType: "ext4", UsagePercent: 40, TotalBytes: 100 * gib, UsedBytes: 40 * gib,
		}}),
		Logs: metrics.OK([]metrics.LogEntry{
			{Time: ts, Priority: 3, Unit: "nginx.service", Message: "bind() to 0.0.0.0:80 failed"},
		}),
	}
}

func lineWith(t *testing.T, frame string, parts ...string) string {
	t.Helper()
	for _, line := range strings.Split(frame, "\n") {
		match := true
		for _, p := range parts {
			if !strings.Contains(line, p) {
				match = false
				break
			}
		}
		if match {
			return line
		}
	}
	t.Fatalf("no line contains %q in:\n%s", parts, frame)
	return ""
}

func TestRender_EndToEnd(t *testing.T) {
	snap := testSnapshot()
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	assert.Equal(t, metrics.SeverityCritical, cls.CPU)
	assert.Equal(t, metrics.SeverityNormal, cls.Memory)
	assert.Equal(t, metrics.SeverityCritical, cls.Services["web-server"])
	assert.Equal(t, metrics.SeverityNormal, cls.Services["database"])

	frame := Render(snap, cls, 100, 40, RenderOptions{Hostname: "box", Interval: 10 * time.Second})

	header := strings.Split(frame, "\n")[0]
	assert.Contains(t, header, "sysmon")
	assert.Contains(t, header, "box")
	assert.Contains(t, header, "2026-10-19 09:30:00")
	assert.Contains(t, header, "round 7")
	assert.Contains(t, header, "CRIT", "header shows the worst severity")

	lineWith(t, frame, "CPU", "95.0% CRIT")
	lineWith(t, frame, "Memory", "50.0% OK")
	lineWith(t, frame, "8 cores", "2400 MHz")

	down := lineWith(t, frame, "web-server")
	assert.Contains(t, down, SymbolDown)
	assert.Contains(t, down, "DOWN")
	assert.Contains(t, down, "connection refused")
	assert.NotContains(t, down, "ms", "a failed probe has no response time")

	up := lineWith(t, frame, "database")
	assert.Contains(t, up, "12ms")
	assert.Contains(t, up, "OK")
	lineWith(t, frame, "cache-service", "12ms")

	lineWith(t, frame, "Services", "2/3 up", "CRIT")
	lineWith(t, frame, "40 GiB / 100 GiB", "R 2.0 KiB/s")
	lineWith(t, frame, "09:30:00", "err", "nginx.service", "bind() to 0.0.0.0:80 failed")

	footer := lineWith(t, frame, "q quit")
	assert.Contains(t, footer, "every 10s")

	for i, line := range strings.Split(frame, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 100, "line %d overflows: %q", i, line)
	}
	assert.LessOrEqual(t, strings.Count(frame, "\n")+1, 40)
}

func TestRender_Deterministic(t *testing.T) {
	snap := testSnapshot()
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	a := Render(snap, cls, 80, 30, RenderOptions{})
	b := Render(snap, cls, 80, 30, RenderOptions{})
	assert.Equal(t, a, b)
}

func TestRender_UnavailableFamily(t *testing.T) {
	snap := testSnapshot()
	snap.CPU = metrics.Fail[metrics.CPUMetrics](
		metrics.NewFailure(metrics.FamilyCPU, metrics.FailureTimeout, "no result within 1s"))
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	frame := Render(snap, cls, 100, 40, RenderOptions{})

	lineWith(t, frame, "CPU", "N/A")
	lineWith(t, frame, "unavailable (timeout: no result within 1s)")
	lineWith(t, frame, "Memory", "50.0% OK")
}

func TestRender_FailedListFamilyRaisesHeader(t *testing.T) {
	snap := testSnapshot()
	snap.CPU = metrics.OK(metrics.CPUMetrics{UsagePercent: 10, Cores: 8})
	snap.Services = metrics.OK([]metrics.ServiceStatus{})
	snap.Disk = metrics.Fail[[]metrics.DiskMetrics](
		metrics.NewFailure(metrics.FamilyDisk, metrics.FailureOSError, "statfs failed"))
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	frame := Render(snap, cls, 100, 40, RenderOptions{})

	header := strings.Split(frame, "\n")[0]
	assert.Contains(t, header, "N/A")
	assert.NotContains(t, header, "OK")
	lineWith(t, frame, "unavailable (os_error: statfs failed)")
}

func TestRender_DisabledFamilyHasNoSection(t *testing.T) {
	snap := testSnapshot()
	snap.Mounts = metrics.Fail[[]metrics.MountInfo](
		metrics.NewFailure(metrics.FamilyMounts, metrics.FailureDisabled, "disabled in config"))
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	frame := Render(snap, cls, 100, 40, RenderOptions{})
	assert.NotContains(t, frame, "Mounts")
	assert.NotContains(t, frame, "disabled")
}

func TestRender_LogsAbsorbHeightAndTruncate(t *testing.T) {
	snap := testSnapshot()
	var logs []metrics.LogEntry
	for i := 0; i < 30; i++ {
		logs = append(logs, metrics.LogEntry{Priority: 4, Unit: "app", Message: fmt.Sprintf("event %d", i)})
	}
	snap.Logs = metrics.OK(logs)
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	frame := Render(snap, cls, 100, 30, RenderOptions{})

	assert.Equal(t, 30, strings.Count(frame, "\n")+1, "the frame fills the terminal exactly")
	lineWith(t, frame, "… 24 more")
	lineWith(t, frame, "event 0")
	assert.NotContains(t, frame, "event 29")
}

func TestRender_SectionsTruncateWhenCramped(t *testing.T) {
	snap := testSnapshot()
	var services []metrics.ServiceStatus
	for i := 0; i < 20; i++ {
		services = append(services, metrics.ServiceStatus{Name: fmt.Sprintf("svc-%02d", i), Kind: metrics.ServiceTCP, Running: true})
	}
	snap.Services = metrics.OK(services)
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	frame := Render(snap, cls, 100, 24, RenderOptions{})

	assert.Equal(t, 24, strings.Count(frame, "\n")+1)
	lineWith(t, frame, "svc-00")
	lineWith(t, frame, "more")
	assert.NotContains(t, frame, "svc-19")
}

func TestRender_UnboundedHeight(t *testing.T) {
	snap := testSnapshot()
	var services []metrics.ServiceStatus
	for i := 0; i < 20; i++ {
		services = append(services, metrics.ServiceStatus{Name: fmt.Sprintf("svc-%02d", i), Kind: metrics.ServiceTCP, Running: true})
	}
	snap.Services = metrics.OK(services)

	frame := Render(snap, metrics.ClassifySnapshot(snap, nil), 100, 0, RenderOptions{})
	lineWith(t, frame, "svc-19")
	assert.NotContains(t, frame, "more")
}

func TestRender_DegradedLayout(t *testing.T) {
	snap := testSnapshot()
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	tests := []struct {
		name          string
		width, height int
	}{
		{"narrow", 30, 40},
		{"short", 100, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := Render(snap, cls, tt.width, tt.height, RenderOptions{})
			lines := strings.Split(frame, "\n")

			assert.LessOrEqual(t, len(lines), tt.height)
			for _, l := range lines {
				assert.LessOrEqual(t, lipgloss.Width(l), tt.width)
			}
			assert.NotContains(t, frame, "╭", "no section borders in the degraded layout")
			lineWith(t, frame, "CPU", "95.0%")
		})
	}
}

func TestRender_DegradedShowsFailures(t *testing.T) {
	snap := testSnapshot()
	snap.Memory = metrics.Fail[metrics.MemoryMetrics](
		metrics.NewFailure(metrics.FamilyMemory, metrics.FailurePermissionDenied, "open /proc/meminfo"))
	cls := metrics.ClassifySnapshot(snap, metrics.DefaultThresholds())

	frame := Render(snap, cls, 38, 20, RenderOptions{})
	lineWith(t, frame, "MEM", "n/a (permission denied)")
	lineWith(t, frame, "SVC", "2/3 up", "CRIT")
}

func TestAllocateRows(t *testing.T) {
	sections := []section{
		{rows: make([]string, 2)},
		{rows: make([]string, 5)},
		{rows: make([]string, 10), fill: true},
	}

	tests := []struct {
		name   string
		budget int
		want   []int
	}{
		{"unbounded", 0, []int{0, 0, 0}},
		{"roomy", 40, []int{2, 5, 10}},
		{"fill absorbs the rest", 16, []int{2, 5, 3}},
		{"fixed sections first", 12, []int{2, 3, 1}},
		{"minimum only", 9, []int{1, 1, 1}},
		{"too small keeps minimum", 4, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allocateRows(sections, tt.budget))
		})
	}
}

func TestSection_RenderTruncates(t *testing.T) {
	s := section{title: "Logs", rows: []string{"a", "b", "c", "d"}}

	out := s.render(40, 3)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "a")
	assert.Contains(t, lines[2], "b")
	assert.Contains(t, lines[3], "… 2 more")
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0 B/s", FormatRate(-5))
	assert.Equal(t, "512 B/s", FormatRate(512))
	assert.Equal(t, "1.5 KiB/s", FormatRate(1536))
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "500µs", FormatLatency(500*time.Microsecond))
	assert.Equal(t, "12ms", FormatLatency(12*time.Millisecond))
	assert.Equal(t, "1.5s", FormatLatency(1500*time.Millisecond))
}
