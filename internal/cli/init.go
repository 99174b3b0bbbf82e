package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/rileyhilliard/sysmon/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	initForce          bool
	initNonInteractive bool
)

// initCmd creates a new sysmon.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create sysmon.yaml configuration",
	Long: `Create a sysmon.yaml file in the current directory.

Prompts for the refresh rate, log limit, thresholds and which sources to
sample. With --non-interactive the defaults are written as-is.

Examples:
  sysmon init
  sysmon init --non-interactive
  sysmon init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.OutOrStdout(), InitOptions{
			Path:           config.ConfigFileName,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "write the defaults without prompting")
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write the config
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// Init writes a new config file.
func Init(w io.Writer, opts InitOptions) error {
	if _, err := os.Stat(opts.Path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", opts.Path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", opts.Path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if !opts.NonInteractive {
		answers := answersFrom(cfg)
		if err := initForm(&answers).Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}
		if err := answers.apply(cfg); err != nil {
			return err
		}
	}

	if err := writeConfigFile(opts.Path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.SymbolSuccess, opts.Path)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  sysmon check  - Verify every source works here")
	fmt.Fprintln(w, "  sysmon        - Start the dashboard")
	return nil
}

// initAnswers holds the form fields as the user typed them.
type initAnswers struct {
	RefreshRate      string
	LogLimit         string
	CPU              string
	Memory           string
	Disk             string
	Sources          []string
	WatchFailedUnits bool
}

func answersFrom(cfg *config.Config) initAnswers {
	a := initAnswers{
		RefreshRate:      strconv.FormatFloat(cfg.RefreshRateSeconds, 'g', -1, 64),
		LogLimit:         strconv.Itoa(cfg.LogLimit),
		CPU:              formatThresholdPair(cfg.Thresholds.CPU),
		Memory:           formatThresholdPair(cfg.Thresholds.Memory),
		Disk:             formatThresholdPair(cfg.Thresholds.Disk),
		WatchFailedUnits: cfg.Services.WatchFailedUnits,
	}
	toggles := sourceToggles(&cfg.Sources)
	for _, f := range metrics.Families {
		if *toggles[f] {
			a.Sources = append(a.Sources, string(f))
		}
	}
	return a
}

// apply copies the answers into cfg and validates the result.
func (a initAnswers) apply(cfg *config.Config) error {
	rate, err := strconv.ParseFloat(strings.TrimSpace(a.RefreshRate), 64)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' is not a number of seconds", a.RefreshRate),
			"Try something like 10 or 2.5.")
	}
	limit, err := strconv.Atoi(strings.TrimSpace(a.LogLimit))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' is not a whole number", a.LogLimit),
			"Use 0 to turn the log panel off.")
	}
	cfg.RefreshRateSeconds = rate
	cfg.LogLimit = limit

	for _, pair := range []struct {
		input  string
		target *config.ThresholdConfig
	}{
		{a.CPU, &cfg.Thresholds.CPU},
		{a.Memory, &cfg.Thresholds.Memory},
		{a.Disk, &cfg.Thresholds.Disk},
	} {
		t, err := parseThresholdPair(pair.input)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid thresholds",
				"Use the form warning/critical, e.g. 70/90.")
		}
		*pair.target = t
	}

	selected := make(map[string]bool, len(a.Sources))
	for _, s := range a.Sources {
		selected[s] = true
	}
	for family, on := range sourceToggles(&cfg.Sources) {
		*on = selected[string(family)]
	}
	cfg.Services.WatchFailedUnits = a.WatchFailedUnits

	return config.Validate(cfg)
}

func sourceToggles(s *config.SourcesConfig) map[metrics.Family]*bool {
	return map[metrics.Family]*bool{
		metrics.FamilyCPU:      &s.CPU,
		metrics.FamilyMemory:   &s.Memory,
		metrics.FamilyDisk:     &s.Disk,
		metrics.FamilyServices: &s.Services,
		metrics.FamilyMounts:   &s.Mounts,
		metrics.FamilyLogs:     &s.Logs,
	}
}

func initForm(a *initAnswers) *huh.Form {
	options := make([]huh.Option[string], 0, len(metrics.Families))
	for _, f := range metrics.Families {
		options = append(options, huh.NewOption(string(f), string(f)))
	}

	validatePair := func(s string) error {
		_, err := parseThresholdPair(s)
		return err
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh rate (seconds)").
				Description("Time between sampling rounds").
				Value(&a.RefreshRate).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v <= 0 {
						return fmt.Errorf("enter a number greater than 0")
					}
					return nil
				}),
			huh.NewInput().
				Title("Log limit").
				Description("Journal entries to keep on screen (0 turns the panel off)").
				Value(&a.LogLimit).
				Validate(func(s string) error {
					v, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || v < 0 {
						return fmt.Errorf("enter a whole number, 0 or more")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().Title("CPU thresholds").Description("warning/critical percent").Value(&a.CPU).Validate(validatePair),
			huh.NewInput().Title("Memory thresholds").Description("warning/critical percent").Value(&a.Memory).Validate(validatePair),
			huh.NewInput().Title("Disk thresholds").Description("warning/critical percent").Value(&a.Disk).Validate(validatePair),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Sources").
				Description("What to sample each round").
				Options(options...).
				Value(&a.Sources),
			huh.NewConfirm().
				Title("Show failed systemd units?").
				Value(&a.WatchFailedUnits),
		),
	)
}

// parseThresholdPair parses "warning/critical", e.g. "70/90".
func parseThresholdPair(s string) (config.ThresholdConfig, error) {
	warnStr, critStr, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return config.ThresholdConfig{}, fmt.Errorf("%q is not a warning/critical pair", s)
	}
	warn, err1 := strconv.ParseFloat(strings.TrimSpace(warnStr), 64)
	crit, err2 := strconv.ParseFloat(strings.TrimSpace(critStr), 64)
	if err1 != nil || err2 != nil {
		return config.ThresholdConfig{}, fmt.Errorf("%q contains something that is not a number", s)
	}
	if warn >= crit {
		return config.ThresholdConfig{}, fmt.Errorf("warning (%g) must be less than critical (%g)", warn, crit)
	}
	return config.ThresholdConfig{Warning: warn, Critical: crit}, nil
}

func formatThresholdPair(t config.ThresholdConfig) string {
	return fmt.Sprintf("%g/%g", t.Warning, t.Critical)
}

// writeConfigFile marshals cfg with a short header.
func writeConfigFile(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# sysmon configuration
# Every key can be overridden with SYSMON_<KEY>, e.g. SYSMON_REFRESH_RATE_SECONDS=5

`
	if err := os.WriteFile(path, []byte(header+string(data)), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}
