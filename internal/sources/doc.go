// Package sources implements the metric sources sampled each round.
//
// Every source exposes Sample(ctx) (T, error) and keeps its own state between
// rounds (previous CPU counters, previous disk counters, the journal cursor).
// Sources share nothing mutable with each other, so the sampler can run them
// in parallel.
//
//	CPUSource     - /proc/stat, /proc/cpuinfo, /proc/loadavg
//	MemorySource  - /proc/meminfo
//	DiskSource    - statfs on configured paths, /proc/diskstats rates
//	MountSource   - /proc/self/mounts filtered to block devices, statfs each
//	ServiceSource - tcp, http, process, systemd and ssh probes, failed units
//	LogSource     - journalctl JSON output into a bounded LogBuffer
//
// Parsers take file contents rather than paths so they can be tested against
// fixtures. ProcFS.Root points the file-backed sources at a fixture tree.
//
// On platforms without procfs the file reads fail with fs.ErrNotExist and
// statfs returns metrics.ErrUnsupported; both classify as unsupported.
package sources
