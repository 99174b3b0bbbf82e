package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/rileyhilliard/sysmon/internal/monitor"
	"github.com/rileyhilliard/sysmon/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Check categories, in display order.
const (
	categoryConfig   = "CONFIG"
	categorySources  = "SOURCES"
	categoryServices = "SERVICES"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate config and sample every source once",
	Long: `Load and validate the config, run a single sampling round and report
which sources work on this machine.

Exits 1 if the config is invalid or a source could not be sampled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCommand(cmd.Context(), cmd.OutOrStdout(), Config())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkCommand(ctx context.Context, w io.Writer, configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	log := logger.NewEnvLogger("sysmon")
	sched := monitor.NewScheduler(newSampler(cfg, log), cfg.Interval(), log)

	sp := ui.NewSpinner(os.Stderr, "Sampling every source once", term.IsTerminal(int(os.Stderr.Fd())))
	sp.Start()
	snap := sched.Once(ctx)
	if len(snap.Failures()) > 0 {
		sp.Fail()
	} else {
		sp.Success()
	}

	return reportCheck(w, cfg, snap)
}

// reportCheck prints the check table and the services table, and returns
// an error when any row failed.
func reportCheck(w io.Writer, cfg *config.Config, snap metrics.Snapshot) error {
	rows := checkRows(cfg, snap)

	fmt.Fprintln(w)
	fmt.Fprint(w, ui.RenderCheckTable(rows))
	if table := servicesTable(snap); table != "" {
		fmt.Fprintln(w, table)
		fmt.Fprintln(w)
	}

	if ui.Failed(rows) {
		return errors.New(errors.ErrSource,
			"Some sources could not be sampled",
			"Run with "+logger.DebugEnv+"=1 for details, or turn them off under 'sources' in your config.")
	}
	fmt.Fprintln(w, ui.SymbolSuccess+" Everything looks good")
	return nil
}

// checkRows turns a config and one snapshot into check results.
func checkRows(cfg *config.Config, snap metrics.Snapshot) []ui.CheckRow {
	var rows []ui.CheckRow

	if cfg.Path != "" {
		rows = append(rows, ui.CheckRow{Status: ui.StatusPass, Category: categoryConfig, Message: "Loaded " + cfg.Path})
	} else {
		rows = append(rows, ui.CheckRow{
			Status:     ui.StatusPass,
			Category:   categoryConfig,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'sysmon init' to create one.",
		})
	}
	rows = append(rows, ui.CheckRow{
		Status:   ui.StatusPass,
		Category: categoryConfig,
		Message: fmt.Sprintf("Refresh every %s, %d service check(s), log limit %d",
			cfg.Interval(), len(cfg.Services.Checks), cfg.LogLimit),
	})

	rows = append(rows,
		familyRow(metrics.FamilyCPU, snap.CPU.Failure,
			fmt.Sprintf("%.1f%% across %d cores", snap.CPU.Value.UsagePercent, snap.CPU.Value.Cores)),
		familyRow(metrics.FamilyMemory, snap.Memory.Failure,
			fmt.Sprintf("%.1f%% of %s used", snap.Memory.Value.UsagePercent(), humanize.IBytes(snap.Memory.Value.TotalBytes))),
		familyRow(metrics.FamilyDisk, snap.Disk.Failure,
			fmt.Sprintf("%d path(s) sampled", len(snap.Disk.Value))),
		familyRow(metrics.FamilyMounts, snap.Mounts.Failure,
			fmt.Sprintf("%d mount(s) found", len(snap.Mounts.Value))),
		familyRow(metrics.FamilyServices, snap.Services.Failure,
			fmt.Sprintf("%d service(s) probed", len(snap.Services.Value))),
		familyRow(metrics.FamilyLogs, snap.Logs.Failure,
			fmt.Sprintf("%d recent entries", len(snap.Logs.Value))),
	)

	if snap.Disk.Available() {
		for _, d := range snap.Disk.Value {
			if d.Err != "" {
				rows = append(rows, ui.CheckRow{
					Status:     ui.StatusWarn,
					Category:   categorySources,
					Message:    fmt.Sprintf("disk %s: %s", d.Path, d.Err),
					Suggestion: "Check the path exists, or remove it from 'disks'.",
				})
			}
		}
	}

	if snap.Services.Available() {
		down := 0
		for _, s := range snap.Services.Value {
			if !s.Running {
				down++
			}
		}
		if down > 0 {
			rows = append(rows, ui.CheckRow{
				Status:     ui.StatusWarn,
				Category:   categoryServices,
				Message:    fmt.Sprintf("%d of %d services down", down, len(snap.Services.Value)),
				Suggestion: "See the table below for the probe errors.",
			})
		} else if len(snap.Services.Value) > 0 {
			rows = append(rows, ui.CheckRow{
				Status:   ui.StatusPass,
				Category: categoryServices,
				Message:  fmt.Sprintf("All %d services up", len(snap.Services.Value)),
			})
		}
	}

	return rows
}

// familyRow reports one source family: skipped when disabled, failed with
// a hint when it could not be sampled, otherwise the summary.
func familyRow(family metrics.Family, failure *metrics.SourceFailure, summary string) ui.CheckRow {
	row := ui.CheckRow{Category: categorySources}
	switch {
	case failure == nil:
		row.Status = ui.StatusPass
		row.Message = fmt.Sprintf("%s: %s", family, summary)
	case failure.Kind == metrics.FailureDisabled:
		row.Status = ui.StatusSkip
		row.Message = fmt.Sprintf("%s: disabled in config", family)
	default:
		row.Status = ui.StatusFail
		row.Message = fmt.Sprintf("%s: %s", family, failure.Label())
		if failure.Message != "" {
			row.Message += " (" + failure.Message + ")"
		}
		row.Suggestion = failureHint(failure.Kind)
	}
	return row
}

func failureHint(kind metrics.FailureKind) string {
	switch kind {
	case metrics.FailureTimeout:
		return "Raise source_timeout or check system load."
	case metrics.FailurePermissionDenied:
		return "Run as a user allowed to read it, or turn the source off."
	case metrics.FailureUnsupported:
		return "This platform does not provide it; turn it off under 'sources'."
	default:
		return "Run with " + logger.DebugEnv + "=1 for details."
	}
}

// servicesTable lists every probed service. Empty when there is nothing
// to show.
func servicesTable(snap metrics.Snapshot) string {
	if !snap.Services.Available() || len(snap.Services.Value) == 0 {
		return ""
	}

	columns := []ui.TableColumn{
		{Title: "SERVICE", Width: 18},
		{Title: "KIND", Width: 8},
		{Title: "TARGET", Width: 26},
		{Title: "STATUS", Width: 8},
		{Title: "DETAIL", Width: 30},
	}

	rows := make([][]string, 0, len(snap.Services.Value))
	for _, s := range snap.Services.Value {
		status, detail := "up", s.Detail
		if s.ResponseTime != nil {
			detail = monitor.FormatLatency(*s.ResponseTime)
			if s.Detail != "" {
				detail += " " + s.Detail
			}
		}
		if !s.Running {
			status, detail = "down", s.LastError
		}
		rows = append(rows, []string{s.Name, string(s.Kind), s.Target, status, detail})
	}
	return ui.RenderSimpleTable(columns, rows)
}
