// Package metrics defines the data shared by sampling, classification and
// rendering: one Snapshot per sampling round, with a Result per source family.
package metrics

import "time"

// Family identifies one metric source.
type Family string

const (
	FamilyCPU      Family = "cpu"
	FamilyMemory   Family = "memory"
	FamilyDisk     Family = "disk"
	FamilyServices Family = "services"
	FamilyMounts   Family = "mounts"
	FamilyLogs     Family = "logs"
)

// Families lists every source family in display order.
var Families = []Family{
	FamilyCPU,
	FamilyMemory,
	FamilyDisk,
	FamilyMounts,
	FamilyServices,
	FamilyLogs,
}

// Result holds either a sampled value or the reason it could not be sampled.
// Exactly one of Value and Failure is meaningful: Failure == nil means Value
// was measured.
type Result[T any] struct {
	Value   T
	Failure *SourceFailure
}

// OK wraps a successfully sampled value.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](f *SourceFailure) Result[T] {
	return Result[T]{Failure: f}
}

// Available reports whether the value was measured.
func (r Result[T]) Available() bool {
	return r.Failure == nil
}

// Disabled reports whether the family was turned off in config.
func (r Result[T]) Disabled() bool {
	return r.Failure != nil && r.Failure.Kind == FailureDisabled
}

// Snapshot is the result of one sampling round. It is immutable once emitted.
type Snapshot struct {
	Round     uint64
	Timestamp time.Time
	Duration  time.Duration

	CPU      Result[CPUMetrics]
	Memory   Result[MemoryMetrics]
	Disk     Result[[]DiskMetrics]
	Services Result[[]ServiceStatus]
	Mounts   Result[[]MountInfo]
	Logs     Result[[]LogEntry]
}

// Failures returns every failed family of the snapshot, disabled ones excluded.
func (s Snapshot) Failures() []*SourceFailure {
	var out []*SourceFailure
	for _, f := range []*SourceFailure{
		s.CPU.Failure,
		s.Memory.Failure,
		s.Disk.Failure,
		s.Mounts.Failure,
		s.Services.Failure,
		s.Logs.Failure,
	} {
		if f != nil && f.Kind != FailureDisabled {
			out = append(out, f)
		}
	}
	return out
}

// CPUMetrics holds processor utilization.
type CPUMetrics struct {
	UsagePercent float64
	FrequencyMHz float64 // 0 when the host does not expose it
	Cores        int
	LoadAvg      [3]float64 // 1, 5, 15 minute load averages
}

// MemoryMetrics holds physical memory and swap usage in bytes.
type MemoryMetrics struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	SwapTotalBytes uint64
	SwapUsedBytes  uint64
}

// UsagePercent returns used memory as a percentage of total.
func (m MemoryMetrics) UsagePercent() float64 {
	return percent(m.UsedBytes, m.TotalBytes)
}

// SwapPercent returns used swap as a percentage of total swap, 0 with no swap.
func (m MemoryMetrics) SwapPercent() float64 {
	return percent(m.SwapUsedBytes, m.SwapTotalBytes)
}

// DiskMetrics holds usage and throughput of one configured filesystem path.
type DiskMetrics struct {
	Path             string
	Device           string
	UsagePercent     float64
	TotalBytes       uint64
	UsedBytes        uint64
	ReadBytesPerSec  float64
	WriteBytesPerSec float64
	// IOAvailable is false when the backing device has no I/O counters
	// (e.g. overlay or network filesystems); the rates are then not measured.
	IOAvailable bool
	// Err is set when usage could not be read for this path.
	Err string
}

// ServiceKind selects how a service is probed.
type ServiceKind string

const (
	ServiceTCP     ServiceKind = "tcp"
	ServiceHTTP    ServiceKind = "http"
	ServiceProcess ServiceKind = "process"
	ServiceSystemd ServiceKind = "systemd"
	ServiceSSH     ServiceKind = "ssh"
)

// ServiceStatus is the outcome of one probe.
type ServiceStatus struct {
	Name    string
	Kind    ServiceKind
	Target  string
	Running bool
	// ResponseTime is set only when the probe succeeded.
	ResponseTime *time.Duration
	LastError    string
	Detail       string
}

// MountInfo describes a mounted filesystem. Err is set when usage could not
// be read for this mount; the rest of the list is still valid.
type MountInfo struct {
	Path         string
	Device       string
	FSType       string
	UsagePercent float64
	TotalBytes   uint64
	UsedBytes    uint64
	Err          string
}

// LogEntry is one recent system log event.
type LogEntry struct {
	Time     time.Time
	Priority int
	Unit     string
	Message  string
}

// PriorityName returns the syslog name of the entry's priority.
func (e LogEntry) PriorityName() string {
	names := []string{"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug"}
	if e.Priority < 0 || e.Priority >= len(names) {
		return "unknown"
	}
	return names[e.Priority]
}

func percent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}
