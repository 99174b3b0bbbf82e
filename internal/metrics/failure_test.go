package metrics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"deadline", context.DeadlineExceeded, FailureTimeout},
		{"wrapped deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), FailureTimeout},
		{"canceled", context.Canceled, FailureTimeout},
		{"permission", &fs.PathError{Op: "open", Path: "/proc/1/io", Err: fs.ErrPermission}, FailurePermissionDenied},
		{"missing proc file", &fs.PathError{Op: "open", Path: "/proc/stat", Err: fs.ErrNotExist}, FailureUnsupported},
		{"missing command", &exec.Error{Name: "journalctl", Err: exec.ErrNotFound}, FailureUnsupported},
		{"platform", ErrUnsupported, FailureUnsupported},
		{"other", errors.New("parse error"), FailureOSError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FailureFromError(FamilyCPU, tt.err)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Kind)
			assert.Equal(t, FamilyCPU, f.Source)
			assert.Equal(t, tt.err.Error(), f.Message)
		})
	}
}

func TestFailureFromError_PassesThroughSourceFailure(t *testing.T) {
	orig := NewFailure(FamilyLogs, FailureDisabled, "off")
	wrapped := fmt.Errorf("sampling: %w", orig)

	assert.Same(t, orig, FailureFromError(FamilyLogs, wrapped))
}

func TestSourceFailure_ErrorAndLabel(t *testing.T) {
	f := NewFailure(FamilyMemory, FailureTimeout, "exceeded 1s")
	assert.Equal(t, "memory: timeout: exceeded 1s", f.Error())
	assert.Equal(t, "timed out", f.Label())

	assert.Equal(t, "disk: os_error", NewFailure(FamilyDisk, FailureOSError, "").Error())
	assert.Equal(t, "unavailable", NewFailure(FamilyDisk, FailureOSError, "").Label())
}

func TestSnapshot_Failures(t *testing.T) {
	snap := Snapshot{
		CPU:    OK(CPUMetrics{UsagePercent: 10}),
		Memory: Fail[MemoryMetrics](NewFailure(FamilyMemory, FailureTimeout, "")),
		Logs:   Fail[[]LogEntry](NewFailure(FamilyLogs, FailureDisabled, "")),
	}

	failures := snap.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, FamilyMemory, failures[0].Source)
	assert.True(t, snap.Logs.Disabled())
	assert.True(t, snap.CPU.Available())
}

func TestMemoryMetrics_Percentages(t *testing.T) {
	m := MemoryMetrics{TotalBytes: 200, UsedBytes: 50, SwapTotalBytes: 0, SwapUsedBytes: 0}
	assert.InDelta(t, 25.0, m.UsagePercent(), 0.001)
	assert.Equal(t, 0.0, m.SwapPercent())

	assert.Equal(t, 0.0, MemoryMetrics{}.UsagePercent())
}

func TestLogEntry_PriorityName(t *testing.T) {
	assert.Equal(t, "err", LogEntry{Priority: 3}.PriorityName())
	assert.Equal(t, "warning", LogEntry{Priority: 4}.PriorityName())
	assert.Equal(t, "unknown", LogEntry{Priority: 9}.PriorityName())
}
