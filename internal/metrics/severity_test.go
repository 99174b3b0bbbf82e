package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	th := Threshold{Warning: 70, Critical: 90}

	tests := []struct {
		value float64
		want  Severity
	}{
		{0, SeverityNormal},
		{50, SeverityNormal},
		{69.99, SeverityNormal},
		{70, SeverityWarning},
		{89.9, SeverityWarning},
		{90, SeverityCritical},
		{100, SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g", tt.value), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value, th))
		})
	}
}

func TestThresholds_Classify(t *testing.T) {
	ts := DefaultThresholds()

	sev, ok := ts.Classify(KindCPU, 95)
	assert.True(t, ok)
	assert.Equal(t, SeverityCritical, sev)

	sev, ok = ts.Classify(KindDisk, 85)
	assert.True(t, ok)
	assert.Equal(t, SeverityWarning, sev)

	sev, ok = ts.Classify(KindSwap, 99)
	assert.False(t, ok, "swap has no default threshold")
	assert.Equal(t, SeverityNone, sev)
}

func TestThreshold_Validate(t *testing.T) {
	assert.NoError(t, Threshold{Warning: 70, Critical: 90}.Validate())
	assert.Error(t, Threshold{Warning: 90, Critical: 90}.Validate())
	assert.Error(t, Threshold{Warning: 95, Critical: 90}.Validate())
}

func TestSeverity_StringAndBadge(t *testing.T) {
	tests := []struct {
		sev   Severity
		name  string
		badge string
	}{
		{SeverityNone, "none", ""},
		{SeverityNormal, "normal", "OK"},
		{SeverityWarning, "warning", "WARN"},
		{SeverityCritical, "critical", "CRIT"},
		{SeverityUnknown, "unknown", "N/A"},
		{Severity(42), "none", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.sev.String())
			assert.Equal(t, tt.badge, tt.sev.Badge())
		})
	}
}
