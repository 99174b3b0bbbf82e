package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, 10*time.Second, cfg.Interval())
	assert.Equal(t, time.Second, cfg.SourceTimeout)
	assert.Equal(t, time.Second, cfg.ServiceTimeout)
	assert.Equal(t, 10, cfg.LogLimit)
	assert.Equal(t, []string{"/"}, cfg.Disks)
	assert.Equal(t, "err", cfg.Logs.Priority)
	assert.True(t, cfg.Services.WatchFailedUnits)
	assert.Len(t, cfg.Services.Checks, 3)
	assert.True(t, cfg.Sources.Logs)
	assert.NoError(t, Validate(cfg))
}

func TestConfig_MetricThresholds(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, metrics.DefaultThresholds(), cfg.MetricThresholds())

	cfg.Thresholds.ServiceLatency = &ThresholdConfig{Warning: 200, Critical: 1000}
	ts := cfg.MetricThresholds()
	assert.Equal(t, metrics.Threshold{Warning: 200, Critical: 1000}, ts[metrics.KindServiceLatency])
	_, hasSwap := ts[metrics.KindSwap]
	assert.False(t, hasSwap)
}

func TestConfig_Interval(t *testing.T) {
	cfg := &Config{RefreshRateSeconds: 0.5}
	assert.Equal(t, 500*time.Millisecond, cfg.Interval())
}

func TestConfig_ServiceChecks(t *testing.T) {
	cfg := &Config{Services: ServicesConfig{Checks: []ServiceCheckConfig{
		{Name: "db", Kind: "tcp", Target: "localhost:5432"},
		{Name: "sshd", Kind: "ssh", Target: "bastion"},
	}}}

	checks := cfg.ServiceChecks()
	require.Len(t, checks, 2)
	assert.Equal(t, "db", checks[0].Name)
	assert.Equal(t, metrics.ServiceTCP, checks[0].Kind)
	assert.Equal(t, metrics.ServiceSSH, checks[1].Kind)
	assert.Equal(t, "bastion", checks[1].Target)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "sysmon.yaml", `
version: 1
refresh_rate_seconds: 2.5
service_timeout: 500ms
log_limit: 25
thresholds:
  cpu: {warning: 50, critical: 80}
  swap: {warning: 10, critical: 50}
sources:
  mounts: false
disks: ["/", "/var"]
logs:
  priority: warning
services:
  watch_failed_units: false
  checks:
    - {name: api, kind: http, target: "http://localhost:8080/health"}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, 2500*time.Millisecond, cfg.Interval())
	assert.Equal(t, 500*time.Millisecond, cfg.ServiceTimeout)
	assert.Equal(t, time.Second, cfg.SourceTimeout, "unset keys keep their defaults")
	assert.Equal(t, 25, cfg.LogLimit)
	assert.Equal(t, ThresholdConfig{Warning: 50, Critical: 80}, cfg.Thresholds.CPU)
	assert.Equal(t, ThresholdConfig{Warning: 70, Critical: 90}, cfg.Thresholds.Memory)
	require.NotNil(t, cfg.Thresholds.Swap)
	assert.Equal(t, 50.0, cfg.Thresholds.Swap.Critical)
	assert.False(t, cfg.Sources.Mounts)
	assert.True(t, cfg.Sources.CPU)
	assert.Equal(t, []string{"/", "/var"}, cfg.Disks)
	assert.Equal(t, "warning", cfg.Logs.Priority)
	assert.False(t, cfg.Services.WatchFailedUnits)
	require.Len(t, cfg.Services.Checks, 1)
	assert.Equal(t, ServiceCheckConfig{Name: "api", Kind: "http", Target: "http://localhost:8080/health"}, cfg.Services.Checks[0])
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, DefaultConfig().Thresholds, cfg.Thresholds)
	assert.Equal(t, DefaultConfig().Services.Checks, cfg.Services.Checks)
	assert.Equal(t, DefaultConfig().Mounts.ExcludeFSTypes, cfg.Mounts.ExcludeFSTypes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SYSMON_REFRESH_RATE_SECONDS", "3")
	t.Setenv("SYSMON_LOG_LIMIT", "0")
	t.Setenv("SYSMON_THRESHOLDS_DISK_WARNING", "60")
	t.Setenv("SYSMON_SOURCES_LOGS", "false")

	path := writeConfig(t, t.TempDir(), "sysmon.yaml", "refresh_rate_seconds: 20\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Interval(), "environment wins over the file")
	assert.Equal(t, 0, cfg.LogLimit)
	assert.Equal(t, 60.0, cfg.Thresholds.Disk.Warning)
	assert.False(t, cfg.Sources.Logs)
}

func TestLoad_InvalidThresholdOrdering(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "sysmon.yaml", `
thresholds:
  cpu: {warning: 95, critical: 90}
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "thresholds.cpu.warning (95) must be less than critical")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "sysmon.yaml", "thresholds: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoad_WrongType(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "sysmon.yaml", "log_limit: lots\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "Invalid config format")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "custom.yaml", "version: 1\n")
		got, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Specified config file not found")
	})

	t.Run("current directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ConfigFileName, "version: 1\n")
		t.Setenv("HOME", t.TempDir())
		chdir(t, dir)

		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, ConfigFileName, got)
	})

	t.Run("global config", func(t *testing.T) {
		home := t.TempDir()
		global := writeConfig(t, home, filepath.Join(GlobalConfigDir, GlobalConfigFile), "version: 1\n")
		t.Setenv("HOME", home)
		chdir(t, t.TempDir())

		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, got)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		chdir(t, t.TempDir())

		got, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLoadOrDefault_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, DotEnvFile, "SYSMON_LOG_LIMIT=42\n")
	t.Setenv("HOME", t.TempDir())
	chdir(t, dir)
	t.Cleanup(func() { _ = os.Unsetenv("SYSMON_LOG_LIMIT") })

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.LogLimit)
	assert.Empty(t, cfg.Path)
}

func TestLoadDotEnv_ExistingVariableWins(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".env", "SYSMON_TEST_DOTENV=from-file\n")
	t.Setenv("SYSMON_TEST_DOTENV", "from-env")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("SYSMON_TEST_DOTENV"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestConfig_MarshalYAML_RoundTrip(t *testing.T) {
	orig := DefaultConfig()
	orig.ServiceTimeout = 750 * time.Millisecond
	orig.Thresholds.Swap = &ThresholdConfig{Warning: 20, Critical: 60}

	data, err := yaml.Marshal(orig)
	require.NoError(t, err)
	assert.Contains(t, string(data), "service_timeout: 750ms")
	assert.Contains(t, string(data), "source_timeout: 1s")
	assert.NotContains(t, string(data), "service_latency")

	path := writeConfig(t, t.TempDir(), "sysmon.yaml", string(data))
	loaded, err := Load(path)
	require.NoError(t, err)

	loaded.Path = ""
	assert.Equal(t, orig, loaded)
}
