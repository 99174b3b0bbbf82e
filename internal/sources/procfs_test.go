package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const procStatFixture = `cpu  100 0 100 700 100 0 0 0 0 0
cpu0 50 0 50 350 50 0 0 0 0 0
cpu1 50 0 50 350 50 0 0 0 0 0
intr 12345 0 0
ctxt 98765
btime 1700000000
`

func TestParseProcStat(t *testing.T) {
	times, err := ParseProcStat(procStatFixture)
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), times.Total)
	assert.Equal(t, uint64(800), times.Idle)
	assert.Equal(t, 2, times.Cores)
}

func TestParseProcStat_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no aggregate line", "cpu0 1 2 3 4\n"},
		{"short line", "cpu  1 2 3\n"},
		{"bad number", "cpu  1 x 3 4 5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProcStat(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestParseLoadavg(t *testing.T) {
	load, err := ParseLoadavg("0.50 0.75 1.00 1/234 5678\n")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.5, 0.75, 1.0}, load)

	_, err = ParseLoadavg("0.50\n")
	assert.Error(t, err)
}

func TestParseCPUInfoMHz(t *testing.T) {
	info := "processor\t: 0\ncpu MHz\t\t: 2000.000\n\nprocessor\t: 1\ncpu MHz\t\t: 3000.000\n"
	assert.InDelta(t, 2500.0, ParseCPUInfoMHz(info), 0.001)

	// ARM kernels omit the field.
	assert.Equal(t, 0.0, ParseCPUInfoMHz("processor\t: 0\nBogoMIPS\t: 48.00\n"))
}

func TestParseMeminfo(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantAvail uint64
		wantErr   bool
	}{
		{
			name:      "with MemAvailable",
			input:     "MemTotal: 16384 kB\nMemFree: 1024 kB\nMemAvailable: 4096 kB\nSwapTotal: 2048 kB\nSwapFree: 1024 kB\n",
			wantAvail: 4096 * 1024,
		},
		{
			name:      "old kernel without MemAvailable",
			input:     "MemTotal: 16384 kB\nMemFree: 1024 kB\nBuffers: 512 kB\nCached: 2048 kB\n",
			wantAvail: (1024 + 512 + 2048) * 1024,
		},
		{
			name:    "missing MemTotal",
			input:   "MemFree: 1024 kB\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseMeminfo(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(16384*1024), info.Total)
			assert.Equal(t, tt.wantAvail, info.Available)
		})
	}
}

func TestParseDiskstats(t *testing.T) {
	input := "   8       0 sda 500 0 8000 0 100 0 16000 0 0 0 0\n" +
		"   8       1 sda1 100 0 2000 0 50 0 4000 0 0 0 0 0 0 0 0\n" +
		"   7       0 loop0 1 0 2\n"

	stats, err := ParseDiskstats(input)
	require.NoError(t, err)

	assert.Equal(t, IOCounters{SectorsRead: 8000, SectorsWritten: 16000}, stats["sda"])
	assert.Equal(t, IOCounters{SectorsRead: 2000, SectorsWritten: 4000}, stats["sda1"])
	_, ok := stats["loop0"]
	assert.False(t, ok, "short lines are skipped")
}

func TestParseMounts(t *testing.T) {
	input := "/dev/sda1 / ext4 rw,relatime 0 0\n" +
		"proc /proc proc rw 0 0\n" +
		"/dev/sdc1 /mnt/my\\040disk ext4 rw 0 0\n"

	mounts := ParseMounts(input)
	require.Len(t, mounts, 3)
	assert.Equal(t, MountEntry{Device: "/dev/sda1", Path: "/", FSType: "ext4", Options: "rw,relatime"}, mounts[0])
	assert.Equal(t, "/mnt/my disk", mounts[2].Path)
}

func TestProcFS_ReadFile(t *testing.T) {
	proc := writeProc(t, map[string]string{"stat": procStatFixture})

	data, err := proc.ReadFile(context.Background(), "stat")
	require.NoError(t, err)
	assert.Equal(t, procStatFixture, data)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = proc.ReadFile(ctx, "stat")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, "/proc/stat", ProcFS{}.Path("stat"))
}
