package sources

import (
	"context"
	"runtime"
	"sync"

	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// CPUSource samples processor utilization from /proc/stat. Usage is the
// delta against the previous sample; the first sample reports the average
// since boot.
type CPUSource struct {
	proc ProcFS

	mu   sync.Mutex
	prev *CPUTimes
}

// NewCPUSource creates a CPU source reading below proc.
func NewCPUSource(proc ProcFS) *CPUSource {
	return &CPUSource{proc: proc}
}

// Sample implements the source contract.
func (s *CPUSource) Sample(ctx context.Context) (metrics.CPUMetrics, error) {
	stat, err := s.proc.ReadFile(ctx, "stat")
	if err != nil {
		return metrics.CPUMetrics{}, err
	}
	cur, err := ParseProcStat(stat)
	if err != nil {
		return metrics.CPUMetrics{}, err
	}

	s.mu.Lock()
	prev := s.prev
	s.prev = &cur
	s.mu.Unlock()

	m := metrics.CPUMetrics{
		UsagePercent: cpuUsage(prev, cur),
		Cores:        cur.Cores,
	}
	if m.Cores < 1 {
		m.Cores = runtime.NumCPU()
	}

	// Frequency and load are optional extras; a missing file is not a failure.
	if info, err := s.proc.ReadFile(ctx, "cpuinfo"); err == nil {
		m.FrequencyMHz = ParseCPUInfoMHz(info)
	}
	if loadavg, err := s.proc.ReadFile(ctx, "loadavg"); err == nil {
		if load, err := ParseLoadavg(loadavg); err == nil {
			m.LoadAvg = load
		}
	}

	return m, nil
}

// cpuUsage computes busy percentage between two counter readings. Without a
// usable previous reading (first sample, counter reset) it falls back to the
// since-boot average of cur.
func cpuUsage(prev *CPUTimes, cur CPUTimes) float64 {
	total, idle := cur.Total, cur.Idle
	if prev != nil && cur.Total > prev.Total && cur.Idle >= prev.Idle {
		total = cur.Total - prev.Total
		idle = cur.Idle - prev.Idle
	}
	if total == 0 {
		return 0
	}
	if idle > total {
		idle = total
	}
	return float64(total-idle) / float64(total) * 100
}
