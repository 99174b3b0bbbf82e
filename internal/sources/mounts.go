package sources

import (
	"context"
	"sort"
	"strings"

	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// DefaultExcludedFSTypes are pseudo filesystems hidden from the mount list.
// Entries ending in "*" match by prefix.
var DefaultExcludedFSTypes = []string{
	"squashfs", "tmpfs", "devtmpfs", "devpts", "proc", "sysfs",
	"securityfs", "cgroup*", "overlay",
}

// MountSource lists block-device mounts with their usage.
type MountSource struct {
	proc    ProcFS
	exclude []string
	statfs  StatFunc
}

// NewMountSource creates a mount source. A nil statfs uses Statfs.
func NewMountSource(proc ProcFS, excludeFSTypes []string, statfs StatFunc) *MountSource {
	if statfs == nil {
		statfs = Statfs
	}
	return &MountSource{proc: proc, exclude: excludeFSTypes, statfs: statfs}
}

// Sample implements the source contract. A mount whose usage cannot be read
// keeps its place in the list with Err set.
func (s *MountSource) Sample(ctx context.Context) ([]metrics.MountInfo, error) {
	data, err := s.proc.ReadFile(ctx, "self/mounts")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []metrics.MountInfo

	for _, m := range ParseMounts(data) {
		if !strings.HasPrefix(m.Device, "/dev/") || s.excluded(m.FSType) || seen[m.Path] {
			continue
		}
		seen[m.Path] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info := metrics.MountInfo{Path: m.Path, Device: m.Device, FSType: m.FSType}
		usage, err := s.statfs(m.Path)
		if err != nil {
			info.Err = metrics.FailureFromError(metrics.FamilyMounts, err).Label()
		} else {
			info.TotalBytes = usage.Total
			info.UsedBytes = usage.Used
			info.UsagePercent = usage.Percent()
		}
		out = append(out, info)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *MountSource) excluded(fstype string) bool {
	for _, ex := range s.exclude {
		if prefix, ok := strings.CutSuffix(ex, "*"); ok {
			if strings.HasPrefix(fstype, prefix) {
				return true
			}
			continue
		}
		if fstype == ex {
			return true
		}
	}
	return false
}
