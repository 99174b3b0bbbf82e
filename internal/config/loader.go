package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the config file looked up in the current directory.
	ConfigFileName = "sysmon.yaml"
	// GlobalConfigDir is the directory for the per-user config.
	GlobalConfigDir = ".config/sysmon"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. SYSMON_LOG_LIMIT.
	EnvPrefix = "SYSMON"
	// DotEnvFile is loaded into the environment before config resolution.
	DotEnvFile = ".env"
)

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. sysmon.yaml in current directory
// 3. ~/.config/sysmon/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName, nil
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// Load reads the config at path merged over the defaults, applies SYSMON_*
// environment overrides and validates the result. An empty path yields the
// defaults plus overrides.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'sysmon init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		where := "your environment overrides"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}
	cfg.Path = path

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the optional .env file, finds the config and loads
// it. Without any config file the defaults are used.
func LoadOrDefault(explicit string) (*Config, error) {
	if err := LoadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// LoadDotEnv loads KEY=value pairs from path into the environment. Variables
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read "+path,
			"Check the file uses KEY=value lines")
	}
	return nil
}

// newViper returns a viper instance seeded with every default so each key
// can be overridden from the environment.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("refresh_rate_seconds", d.RefreshRateSeconds)
	v.SetDefault("source_timeout", d.SourceTimeout)
	v.SetDefault("service_timeout", d.ServiceTimeout)
	v.SetDefault("log_limit", d.LogLimit)

	v.SetDefault("thresholds.cpu.warning", d.Thresholds.CPU.Warning)
	v.SetDefault("thresholds.cpu.critical", d.Thresholds.CPU.Critical)
	v.SetDefault("thresholds.memory.warning", d.Thresholds.Memory.Warning)
	v.SetDefault("thresholds.memory.critical", d.Thresholds.Memory.Critical)
	v.SetDefault("thresholds.disk.warning", d.Thresholds.Disk.Warning)
	v.SetDefault("thresholds.disk.critical", d.Thresholds.Disk.Critical)

	v.SetDefault("sources.cpu", d.Sources.CPU)
	v.SetDefault("sources.memory", d.Sources.Memory)
	v.SetDefault("sources.disk", d.Sources.Disk)
	v.SetDefault("sources.services", d.Sources.Services)
	v.SetDefault("sources.mounts", d.Sources.Mounts)
	v.SetDefault("sources.logs", d.Sources.Logs)

	v.SetDefault("disks", d.Disks)
	v.SetDefault("mounts.exclude_fstypes", d.Mounts.ExcludeFSTypes)
	v.SetDefault("logs.priority", d.Logs.Priority)
	v.SetDefault("services.watch_failed_units", d.Services.WatchFailedUnits)
	v.SetDefault("services.checks", d.Services.Checks)
}
