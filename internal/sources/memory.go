package sources

import (
	"context"

	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// MemorySource samples memory and swap from /proc/meminfo.
type MemorySource struct {
	proc ProcFS
}

// NewMemorySource creates a memory source reading below proc.
func NewMemorySource(proc ProcFS) *MemorySource {
	return &MemorySource{proc: proc}
}

// Sample implements the source contract.
func (s *MemorySource) Sample(ctx context.Context) (metrics.MemoryMetrics, error) {
	data, err := s.proc.ReadFile(ctx, "meminfo")
	if err != nil {
		return metrics.MemoryMetrics{}, err
	}
	info, err := ParseMeminfo(data)
	if err != nil {
		return metrics.MemoryMetrics{}, err
	}

	m := metrics.MemoryMetrics{
		TotalBytes:     info.Total,
		UsedBytes:      info.Total - info.Available,
		AvailableBytes: info.Available,
		SwapTotalBytes: info.SwapTotal,
	}
	if info.SwapTotal > info.SwapFree {
		m.SwapUsedBytes = info.SwapTotal - info.SwapFree
	}
	return m, nil
}
