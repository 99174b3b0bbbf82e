package sources

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultProcRoot is where procfs is mounted on Linux.
const DefaultProcRoot = "/proc"

// ProcFS reads files below a procfs root. Tests point Root at a fixture tree.
type ProcFS struct {
	Root string
}

// ReadFile reads a file relative to the procfs root, e.g. "stat" or
// "self/mounts".
func (p ProcFS) ReadFile(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.Path(name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Path returns the absolute path of name below the root.
func (p ProcFS) Path(name string) string {
	root := p.Root
	if root == "" {
		root = DefaultProcRoot
	}
	return filepath.Join(root, name)
}

// CPUTimes is the aggregate jiffy counters of /proc/stat.
type CPUTimes struct {
	Total uint64
	Idle  uint64 // idle + iowait
	Cores int
}

// ParseProcStat parses /proc/stat into aggregate CPU counters and a core count.
func ParseProcStat(procStat string) (CPUTimes, error) {
	var times CPUTimes
	found := false

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()

		// Individual cores: cpu0, cpu1, ...
		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			times.Cores++
			continue
		}

		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		// cpu user nice system idle iowait irq softirq steal guest guest_nice
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return CPUTimes{}, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}
		// guest and guest_nice are already counted in user and nice.
		limit := len(fields)
		if limit > 9 {
			limit = 9
		}
		for i := 1; i < limit; i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return CPUTimes{}, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			times.Total += val
			if i == 4 || i == 5 {
				times.Idle += val
			}
		}
		found = true
	}

	if err := scanner.Err(); err != nil {
		return CPUTimes{}, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return CPUTimes{}, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}
	return times, nil
}

// ParseLoadavg parses the three load averages of /proc/loadavg.
func ParseLoadavg(procLoadavg string) ([3]float64, error) {
	var load [3]float64
	fields := strings.Fields(strings.TrimSpace(procLoadavg))
	if len(fields) < 3 {
		return load, fmt.Errorf("invalid /proc/loadavg: %q", procLoadavg)
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		load[i] = val
	}
	return load, nil
}

// ParseCPUInfoMHz returns the average "cpu MHz" across the cores listed in
// /proc/cpuinfo, or 0 when the kernel does not report it.
func ParseCPUInfoMHz(cpuinfo string) float64 {
	var sum float64
	var n int

	scanner := bufio.NewScanner(strings.NewReader(cpuinfo))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "cpu MHz" {
			continue
		}
		mhz, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			continue
		}
		sum += mhz
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MemInfo is the subset of /proc/meminfo sysmon uses, in bytes.
type MemInfo struct {
	Total     uint64
	Available uint64
	SwapTotal uint64
	SwapFree  uint64
}

// ParseMeminfo parses /proc/meminfo. When MemAvailable is missing (kernels
// before 3.14) it is approximated by MemFree + Buffers + Cached.
func ParseMeminfo(procMeminfo string) (MemInfo, error) {
	values := make(map[string]uint64)

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		val, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}
		// Values are in kB
		values[strings.TrimSuffix(parts[0], ":")] = val * 1024
	}
	if err := scanner.Err(); err != nil {
		return MemInfo{}, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}

	total, ok := values["MemTotal"]
	if !ok || total == 0 {
		return MemInfo{}, fmt.Errorf("MemTotal missing from /proc/meminfo")
	}

	avail, ok := values["MemAvailable"]
	if !ok {
		avail = values["MemFree"] + values["Buffers"] + values["Cached"]
	}
	if avail > total {
		avail = total
	}

	return MemInfo{
		Total:     total,
		Available: avail,
		SwapTotal: values["SwapTotal"],
		SwapFree:  values["SwapFree"],
	}, nil
}

// IOCounters holds cumulative sector counts of one block device.
type IOCounters struct {
	SectorsRead    uint64
	SectorsWritten uint64
}

// SectorSize is the unit of /proc/diskstats sector counters, independent of
// the device's physical sector size.
const SectorSize = 512

// ParseDiskstats parses /proc/diskstats into counters keyed by device name.
func ParseDiskstats(diskstats string) (map[string]IOCounters, error) {
	out := make(map[string]IOCounters)

	scanner := bufio.NewScanner(strings.NewReader(diskstats))
	for scanner.Scan() {
		// major minor name reads merged sectors_read ms writes merged sectors_written ...
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}
		read, err := strconv.ParseUint(fields[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sectors read for %s: %w", fields[2], err)
		}
		written, err := strconv.ParseUint(fields[9], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sectors written for %s: %w", fields[2], err)
		}
		out[fields[2]] = IOCounters{SectorsRead: read, SectorsWritten: written}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/diskstats: %w", err)
	}
	return out, nil
}

// MountEntry is one line of /proc/self/mounts.
type MountEntry struct {
	Device  string
	Path    string
	FSType  string
	Options string
}

// ParseMounts parses /proc/self/mounts, decoding the octal escapes the kernel
// uses for spaces and tabs in paths.
func ParseMounts(mounts string) []MountEntry {
	var out []MountEntry

	scanner := bufio.NewScanner(strings.NewReader(mounts))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		out = append(out, MountEntry{
			Device:  unescapeMountField(fields[0]),
			Path:    unescapeMountField(fields[1]),
			FSType:  fields[2],
			Options: fields[3],
		})
	}
	return out
}

// unescapeMountField decodes \040-style octal escapes.
func unescapeMountField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
