package config

import (
	"time"

	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/rileyhilliard/sysmon/internal/sources"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config is the complete sysmon.yaml configuration. It is loaded once at
// startup and never modified afterwards.
type Config struct {
	Version int `yaml:"version" mapstructure:"version" validate:"gte=0"`

	// RefreshRateSeconds is the time between round starts.
	RefreshRateSeconds float64 `yaml:"refresh_rate_seconds" mapstructure:"refresh_rate_seconds" validate:"gt=0"`

	// SourceTimeout bounds each metric source per round.
	SourceTimeout time.Duration `yaml:"-" mapstructure:"source_timeout" validate:"gt=0"`

	// ServiceTimeout bounds each individual service probe.
	ServiceTimeout time.Duration `yaml:"-" mapstructure:"service_timeout" validate:"gt=0"`

	// LogLimit is the number of journal entries kept. Zero disables log
	// sampling.
	LogLimit int `yaml:"log_limit" mapstructure:"log_limit" validate:"gte=0"`

	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`

	// Disks are the paths whose filesystem usage and I/O are shown.
	Disks []string `yaml:"disks" mapstructure:"disks" validate:"dive,required"`

	Mounts   MountsConfig   `yaml:"mounts" mapstructure:"mounts"`
	Logs     LogsConfig     `yaml:"logs" mapstructure:"logs"`
	Services ServicesConfig `yaml:"services" mapstructure:"services"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" mapstructure:"-"`
}

// ThresholdConfig is one warning/critical pair.
type ThresholdConfig struct {
	Warning  float64 `yaml:"warning" mapstructure:"warning" validate:"gte=0,ltfield=Critical"`
	Critical float64 `yaml:"critical" mapstructure:"critical" validate:"gt=0"`
}

// ThresholdsConfig holds the thresholds per metric kind. Percentages for
// cpu, memory, swap and disk; milliseconds for service_latency. Kinds left
// unset are never classified.
type ThresholdsConfig struct {
	CPU            ThresholdConfig  `yaml:"cpu" mapstructure:"cpu"`
	Memory         ThresholdConfig  `yaml:"memory" mapstructure:"memory"`
	Disk           ThresholdConfig  `yaml:"disk" mapstructure:"disk"`
	Swap           *ThresholdConfig `yaml:"swap,omitempty" mapstructure:"swap" validate:"omitempty"`
	ServiceLatency *ThresholdConfig `yaml:"service_latency,omitempty" mapstructure:"service_latency" validate:"omitempty"`
}

// SourcesConfig toggles each metric family.
type SourcesConfig struct {
	CPU      bool `yaml:"cpu" mapstructure:"cpu"`
	Memory   bool `yaml:"memory" mapstructure:"memory"`
	Disk     bool `yaml:"disk" mapstructure:"disk"`
	Services bool `yaml:"services" mapstructure:"services"`
	Mounts   bool `yaml:"mounts" mapstructure:"mounts"`
	Logs     bool `yaml:"logs" mapstructure:"logs"`
}

// MountsConfig controls the mount listing.
type MountsConfig struct {
	// ExcludeFSTypes hides mounts by filesystem type. A trailing "*"
	// matches by prefix.
	ExcludeFSTypes []string `yaml:"exclude_fstypes" mapstructure:"exclude_fstypes"`
}

// LogsConfig controls the journal panel.
type LogsConfig struct {
	// Priority is the most verbose journal priority shown.
	Priority string `yaml:"priority" mapstructure:"priority" validate:"oneof=emerg alert crit err warning notice info debug 0 1 2 3 4 5 6 7"`
}

// ServicesConfig lists the service probes.
type ServicesConfig struct {
	// WatchFailedUnits adds systemd units in a failed state to the list.
	WatchFailedUnits bool                 `yaml:"watch_failed_units" mapstructure:"watch_failed_units"`
	Checks           []ServiceCheckConfig `yaml:"checks" mapstructure:"checks" validate:"unique=Name,dive"`
}

// ServiceCheckConfig is one configured service probe.
type ServiceCheckConfig struct {
	Name   string `yaml:"name" mapstructure:"name" validate:"required"`
	Kind   string `yaml:"kind" mapstructure:"kind" validate:"oneof=tcp http process systemd ssh"`
	Target string `yaml:"target" mapstructure:"target" validate:"required"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:            CurrentConfigVersion,
		RefreshRateSeconds: 10,
		SourceTimeout:      time.Second,
		ServiceTimeout:     time.Second,
		LogLimit:           10,
		Thresholds: ThresholdsConfig{
			CPU:    ThresholdConfig{Warning: 70, Critical: 90},
			Memory: ThresholdConfig{Warning: 70, Critical: 90},
			Disk:   ThresholdConfig{Warning: 80, Critical: 95},
		},
		Sources: SourcesConfig{
			CPU: true, Memory: true, Disk: true,
			Services: true, Mounts: true, Logs: true,
		},
		Disks: []string{"/"},
		Mounts: MountsConfig{
			ExcludeFSTypes: append([]string(nil), sources.DefaultExcludedFSTypes...),
		},
		Logs: LogsConfig{Priority: "err"},
		Services: ServicesConfig{
			WatchFailedUnits: true,
			Checks: []ServiceCheckConfig{
				{Name: "web-server", Kind: "http", Target: "http://localhost:80"},
				{Name: "database", Kind: "tcp", Target: "localhost:5432"},
				{Name: "cache-service", Kind: "tcp", Target: "localhost:6379"},
			},
		},
	}
}

// Interval returns the refresh rate as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshRateSeconds * float64(time.Second))
}

// MetricThresholds converts the configured thresholds for the classifier.
func (c *Config) MetricThresholds() metrics.Thresholds {
	ts := metrics.Thresholds{
		metrics.KindCPU:    metrics.Threshold(c.Thresholds.CPU),
		metrics.KindMemory: metrics.Threshold(c.Thresholds.Memory),
		metrics.KindDisk:   metrics.Threshold(c.Thresholds.Disk),
	}
	if c.Thresholds.Swap != nil {
		ts[metrics.KindSwap] = metrics.Threshold(*c.Thresholds.Swap)
	}
	if c.Thresholds.ServiceLatency != nil {
		ts[metrics.KindServiceLatency] = metrics.Threshold(*c.Thresholds.ServiceLatency)
	}
	return ts
}

// ServiceChecks converts the configured checks for the service source.
func (c *Config) ServiceChecks() []sources.ServiceCheck {
	checks := make([]sources.ServiceCheck, 0, len(c.Services.Checks))
	for _, sc := range c.Services.Checks {
		checks = append(checks, sources.ServiceCheck{
			Name:   sc.Name,
			Kind:   metrics.ServiceKind(sc.Kind),
			Target: sc.Target,
		})
	}
	return checks
}

// MarshalYAML writes durations as strings like "1s" so the file reads back
// the way a user would write it.
func (c Config) MarshalYAML() (interface{}, error) {
	type plainConfig Config
	return struct {
		Plain          plainConfig `yaml:",inline"`
		SourceTimeout  string      `yaml:"source_timeout"`
		ServiceTimeout string      `yaml:"service_timeout"`
	}{
		Plain:          plainConfig(c),
		SourceTimeout:  c.SourceTimeout.String(),
		ServiceTimeout: c.ServiceTimeout.String(),
	}, nil
}
