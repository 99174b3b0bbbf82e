package sources

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// DiskSource samples usage and throughput for a fixed set of paths. Rates
// are the counter delta against the previous sample of the same device; the
// first sample of a device reports zero.
type DiskSource struct {
	proc   ProcFS
	paths  []string
	statfs StatFunc
	now    func() time.Time

	mu   sync.Mutex
	prev map[string]ioSample
}

type ioSample struct {
	at       time.Time
	counters IOCounters
}

// NewDiskSource creates a disk source for paths. A nil statfs uses Statfs.
func NewDiskSource(proc ProcFS, paths []string, statfs StatFunc) *DiskSource {
	if statfs == nil {
		statfs = Statfs
	}
	return &DiskSource{
		proc:   proc,
		paths:  paths,
		statfs: statfs,
		now:    time.Now,
		prev:   make(map[string]ioSample),
	}
}

// Sample implements the source contract.
func (s *DiskSource) Sample(ctx context.Context) ([]metrics.DiskMetrics, error) {
	var mounts []MountEntry
	if data, err := s.proc.ReadFile(ctx, "self/mounts"); err == nil {
		mounts = ParseMounts(data)
	}

	// Without diskstats the usage is still worth showing; rates are marked
	// unavailable per entry.
	var counters map[string]IOCounters
	if data, err := s.proc.ReadFile(ctx, "diskstats"); err == nil {
		counters, _ = ParseDiskstats(data)
	}

	now := s.now()
	out := make([]metrics.DiskMetrics, 0, len(s.paths))
	var firstErr error
	failed := 0

	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := metrics.DiskMetrics{Path: path, Device: backingDevice(mounts, path)}

		usage, err := s.statfs(path)
		if err != nil {
			d.Err = err.Error()
			if firstErr == nil {
				firstErr = err
			}
			failed++
			out = append(out, d)
			continue
		}
		d.TotalBytes = usage.Total
		d.UsedBytes = usage.Used
		d.UsagePercent = usage.Percent()

		if c, ok := counters[deviceName(d.Device)]; ok {
			d.IOAvailable = true
			d.ReadBytesPerSec, d.WriteBytesPerSec = s.rates(d.Device, now, c)
		}
		out = append(out, d)
	}

	// Every path failing is a failure of the family, classified from the
	// first error (e.g. unsupported platform).
	if failed > 0 && failed == len(s.paths) {
		return nil, firstErr
	}
	return out, nil
}

func (s *DiskSource) rates(device string, now time.Time, cur IOCounters) (read, write float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.prev[device]
	s.prev[device] = ioSample{at: now, counters: cur}
	if !ok {
		return 0, 0
	}

	secs := now.Sub(prev.at).Seconds()
	if secs <= 0 {
		return 0, 0
	}
	return counterRate(prev.counters.SectorsRead, cur.SectorsRead, secs),
		counterRate(prev.counters.SectorsWritten, cur.SectorsWritten, secs)
}

// counterRate converts a sector counter delta to bytes per second. A counter
// that went backwards (device reset) reads as zero.
func counterRate(prev, cur uint64, secs float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) * SectorSize / secs
}

// backingDevice finds the device of the longest mount path containing path.
func backingDevice(mounts []MountEntry, path string) string {
	best, bestLen := "", -1
	for _, m := range mounts {
		if !pathContains(m.Path, path) {
			continue
		}
		if len(m.Path) >= bestLen {
			best, bestLen = m.Device, len(m.Path)
		}
	}
	return best
}

func pathContains(mount, path string) bool {
	if mount == "/" || mount == path {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(mount, "/")+"/")
}

// deviceName maps a device path to its /proc/diskstats name, following
// symlinks such as /dev/mapper/root -> /dev/dm-0.
func deviceName(device string) string {
	if device == "" {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(device); err == nil {
		device = resolved
	}
	return filepath.Base(device)
}
