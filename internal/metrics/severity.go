package metrics

import "fmt"

// Severity is the classification of a metric value against its threshold.
type Severity int

const (
	// SeverityNone means no threshold applies; the value renders neutral.
	SeverityNone Severity = iota
	SeverityNormal
	SeverityWarning
	SeverityCritical
	// SeverityUnknown marks a value that could not be measured.
	SeverityUnknown
)

// String returns a human-readable severity.
func (s Severity) String() string {
	switch s {
	case SeverityNormal:
		return "normal"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	case SeverityUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// Badge is the short tag rendered next to a classified value, so severity
// stays readable without colors.
func (s Severity) Badge() string {
	switch s {
	case SeverityNormal:
		return "OK"
	case SeverityWarning:
		return "WARN"
	case SeverityCritical:
		return "CRIT"
	case SeverityUnknown:
		return "N/A"
	default:
		return ""
	}
}

// Kind names a classifiable metric.
type Kind string

const (
	KindCPU            Kind = "cpu"
	KindMemory         Kind = "memory"
	KindSwap           Kind = "swap"
	KindDisk           Kind = "disk"
	KindServiceLatency Kind = "service_latency"
)

// Kinds lists every classifiable metric kind.
var Kinds = []Kind{KindCPU, KindMemory, KindSwap, KindDisk, KindServiceLatency}

// Threshold holds the warning and critical boundaries of one metric.
// Percent kinds are 0-100; service_latency is in milliseconds.
type Threshold struct {
	Warning  float64
	Critical float64
}

// Validate checks that warning is strictly below critical.
func (t Threshold) Validate() error {
	if t.Warning >= t.Critical {
		return fmt.Errorf("warning (%g) must be less than critical (%g)", t.Warning, t.Critical)
	}
	return nil
}

// Thresholds maps metric kinds to their thresholds.
type Thresholds map[Kind]Threshold

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		KindCPU:    {Warning: 70, Critical: 90},
		KindMemory: {Warning: 70, Critical: 90},
		KindDisk:   {Warning: 80, Critical: 95},
	}
}

// Classify maps a value onto a severity: below warning is normal, from
// warning up to critical is a warning, critical and above is critical.
func Classify(value float64, t Threshold) Severity {
	switch {
	case value >= t.Critical:
		return SeverityCritical
	case value >= t.Warning:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

// Classify classifies a value of the given kind. The boolean is false when no
// threshold is configured for kind.
func (ts Thresholds) Classify(kind Kind, value float64) (Severity, bool) {
	t, ok := ts[kind]
	if !ok {
		return SeverityNone, false
	}
	return Classify(value, t), true
}
