package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"github.com/rileyhilliard/sysmon/internal/monitor"
	"github.com/rileyhilliard/sysmon/internal/sources"
	"golang.org/x/term"
)

// serviceGrace is added to the per-probe timeout to get the budget of the
// whole services family, so a slow probe reports its own timeout instead
// of failing the family.
const serviceGrace = 250 * time.Millisecond

// DashboardOptions holds the root command flags.
type DashboardOptions struct {
	ConfigPath string
	Interval   time.Duration
	Once       bool
}

// dashboardCommand loads config, then either prints one frame (--once) or
// runs the live dashboard until the user quits or a signal arrives.
func dashboardCommand(ctx context.Context, opts DashboardOptions) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	every := cfg.Interval()
	if opts.Interval > 0 {
		every = opts.Interval
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Once {
		log := logger.NewEnvLogger("sysmon")
		sched := monitor.NewScheduler(newSampler(cfg, log), every, log)
		return renderOnce(ctx, os.Stdout, sched, cfg.MetricThresholds(), terminalWidth(os.Stdout))
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrTerminal,
			"sysmon needs an interactive terminal",
			"Run it in a terminal, or use --once to print a single frame.")
	}

	// Log output would tear the alternate screen; route it to a file or
	// nowhere before anything logs.
	closer, err := logger.Setup()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"Failed to set up logging",
			"Check "+logger.LogFileEnv+" points to a writable file.")
	}
	defer closer.Close()

	log := logger.NewEnvLogger("sysmon")
	sched := monitor.NewScheduler(newSampler(cfg, log), every, log)
	return runDashboard(ctx, sched, cfg.MetricThresholds(), tea.WithAltScreen())
}

// runDashboard runs the Bubble Tea program and the scheduler side by side.
// The scheduler stops on its own context, which the model cancels on quit;
// the program stops on ctx, which signals cancel. A stop through ctx is a
// clean exit.
func runDashboard(ctx context.Context, sched *monitor.Scheduler, thresholds metrics.Thresholds, opts ...tea.ProgramOption) error {
	sampleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hostname, _ := os.Hostname()
	model := monitor.NewModel(monitor.ModelConfig{
		Thresholds: thresholds,
		Interval:   sched.Interval(),
		Hostname:   hostname,
		Refresh:    sched.Refresh,
		Cancel:     cancel,
	})

	p := tea.NewProgram(model, append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	}, opts...)...)

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(sampleCtx, func(snap metrics.Snapshot) {
			p.Send(monitor.SnapshotMsg(snap))
		})
	}()

	_, err := p.Run()
	cancel()
	// Wait for the in-flight round so no sampling outlives the program.
	<-done

	if err != nil {
		if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrRender,
			"Dashboard stopped unexpectedly",
			"Try resizing the terminal or run with --once.")
	}
	return nil
}

// renderOnce samples one round and prints the frame. Height is unbounded
// so nothing is cut off in a pipe or file.
func renderOnce(ctx context.Context, w io.Writer, sched *monitor.Scheduler, thresholds metrics.Thresholds, width int) error {
	snap := sched.Once(ctx)
	if err := ctx.Err(); err != nil {
		return nil
	}

	hostname, _ := os.Hostname()
	frame := monitor.Render(snap, metrics.ClassifySnapshot(snap, thresholds), width, 0, monitor.RenderOptions{
		Hostname: hostname,
		Interval: sched.Interval(),
	})
	if _, err := fmt.Fprintln(w, frame); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Failed to write output",
			"Check that stdout is writable.")
	}
	return nil
}

// terminalWidth returns the width of f when it is a terminal, otherwise
// the default.
func terminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return monitor.DefaultWidth
}

// newSampler wires the configured sources into a sampler. Families turned
// off in config get no source and show as disabled.
func newSampler(cfg *config.Config, log logger.Logger) *monitor.Sampler {
	return monitor.NewSampler(buildSources(cfg, log), cfg.SourceTimeout,
		monitor.WithFamilyTimeout(metrics.FamilyServices, cfg.ServiceTimeout+serviceGrace),
		monitor.WithSamplerLogger(log),
	)
}

func buildSources(cfg *config.Config, log logger.Logger) monitor.Sources {
	proc := sources.ProcFS{Root: sources.DefaultProcRoot}

	var src monitor.Sources
	if cfg.Sources.CPU {
		src.CPU = sources.NewCPUSource(proc)
	}
	if cfg.Sources.Memory {
		src.Memory = sources.NewMemorySource(proc)
	}
	if cfg.Sources.Disk {
		src.Disk = sources.NewDiskSource(proc, cfg.Disks, nil)
	}
	if cfg.Sources.Services {
		src.Services = sources.NewServiceSource(cfg.ServiceChecks(), cfg.ServiceTimeout,
			sources.WithProcFS(proc),
			sources.WithFailedUnits(cfg.Services.WatchFailedUnits),
			sources.WithServiceLogger(log),
		)
	}
	if cfg.Sources.Mounts {
		src.Mounts = sources.NewMountSource(proc, cfg.Mounts.ExcludeFSTypes, nil)
	}
	if cfg.Sources.Logs {
		src.Logs = sources.NewLogSource(sources.ExecRunner{}, cfg.Logs.Priority, metrics.NewLogBuffer(cfg.LogLimit))
	}
	return src
}
