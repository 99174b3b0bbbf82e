//go:build !linux

package sources

import "github.com/rileyhilliard/sysmon/internal/metrics"

// Statfs is only implemented on Linux.
func Statfs(path string) (FSUsage, error) {
	return FSUsage{}, metrics.ErrUnsupported
}
