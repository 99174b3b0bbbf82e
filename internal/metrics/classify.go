package metrics

// Classification holds the severities derived from one snapshot. It is
// recomputed every round and never stored in the snapshot itself.
type Classification struct {
	CPU    Severity
	Memory Severity
	Swap   Severity
	// Disks and Mounts are keyed by path; Services by service name.
	Disks    map[string]Severity
	Mounts   map[string]Severity
	Services map[string]Severity
	// DiskFamily, MountsFamily and ServicesFamily are SeverityUnknown when
	// the whole list could not be sampled, SeverityNone otherwise.
	DiskFamily     Severity
	MountsFamily   Severity
	ServicesFamily Severity
}

// ClassifySnapshot classifies every value of s. Values that could not be
// measured classify as SeverityUnknown, never as normal. Mounts use the disk
// threshold. A service that is not running is critical; a running service is
// classified on its response time in milliseconds when service_latency is
// configured, and normal otherwise. Disabled families classify as
// SeverityNone.
func ClassifySnapshot(s Snapshot, ts Thresholds) Classification {
	c := Classification{
		Disks:    make(map[string]Severity),
		Mounts:   make(map[string]Severity),
		Services: make(map[string]Severity),
	}

	switch {
	case s.CPU.Available():
		c.CPU, _ = ts.Classify(KindCPU, s.CPU.Value.UsagePercent)
	case !s.CPU.Disabled():
		c.CPU = SeverityUnknown
	}

	switch {
	case s.Memory.Available():
		c.Memory, _ = ts.Classify(KindMemory, s.Memory.Value.UsagePercent())
		if s.Memory.Value.SwapTotalBytes > 0 {
			c.Swap, _ = ts.Classify(KindSwap, s.Memory.Value.SwapPercent())
		}
	case !s.Memory.Disabled():
		c.Memory = SeverityUnknown
		c.Swap = SeverityUnknown
	}

	c.DiskFamily = familySeverity(s.Disk.Failure)
	c.MountsFamily = familySeverity(s.Mounts.Failure)
	c.ServicesFamily = familySeverity(s.Services.Failure)

	if s.Disk.Available() {
		for _, d := range s.Disk.Value {
			if d.Err != "" {
				c.Disks[d.Path] = SeverityUnknown
				continue
			}
			c.Disks[d.Path], _ = ts.Classify(KindDisk, d.UsagePercent)
		}
	}

	if s.Mounts.Available() {
		for _, m := range s.Mounts.Value {
			if m.Err != "" {
				c.Mounts[m.Path] = SeverityUnknown
				continue
			}
			c.Mounts[m.Path], _ = ts.Classify(KindDisk, m.UsagePercent)
		}
	}

	if s.Services.Available() {
		for _, svc := range s.Services.Value {
			c.Services[svc.Name] = classifyService(svc, ts)
		}
	}

	return c
}

// familySeverity is SeverityUnknown for a family that failed as a whole.
func familySeverity(f *SourceFailure) Severity {
	if f == nil || f.Kind == FailureDisabled {
		return SeverityNone
	}
	return SeverityUnknown
}

func classifyService(svc ServiceStatus, ts Thresholds) Severity {
	if !svc.Running {
		return SeverityCritical
	}
	if svc.ResponseTime == nil {
		return SeverityNormal
	}
	ms := float64(svc.ResponseTime.Microseconds()) / 1000
	if sev, ok := ts.Classify(KindServiceLatency, ms); ok {
		return sev
	}
	return SeverityNormal
}

// Worst returns the most severe classification in c. Critical outranks
// warning, which outranks unknown, which outranks normal.
func (c Classification) Worst() Severity {
	all := []Severity{c.CPU, c.Memory, c.Swap, c.DiskFamily, c.MountsFamily, c.ServicesFamily}
	for _, m := range []map[string]Severity{c.Disks, c.Mounts, c.Services} {
		for _, s := range m {
			all = append(all, s)
		}
	}
	return WorstOf(all...)
}

// WorstOf returns the most severe of sevs, SeverityNone when empty.
func WorstOf(sevs ...Severity) Severity {
	worst := SeverityNone
	for _, s := range sevs {
		if rank(s) > rank(worst) {
			worst = s
		}
	}
	return worst
}

func rank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityWarning:
		return 3
	case SeverityUnknown:
		return 2
	case SeverityNormal:
		return 1
	default:
		return 0
	}
}
