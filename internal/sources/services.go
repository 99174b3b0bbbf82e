package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// ServiceCheck is one configured service probe.
type ServiceCheck struct {
	Name   string
	Kind   metrics.ServiceKind
	Target string
}

// ServiceSource probes every configured service in parallel, each bounded by
// its own timeout. One failing probe never affects the others.
type ServiceSource struct {
	checks      []ServiceCheck
	timeout     time.Duration
	watchFailed bool
	runner      Runner
	proc        ProcFS
	client      *http.Client
	log         logger.Logger
}

// ServiceOption configures a ServiceSource.
type ServiceOption func(*ServiceSource)

// WithRunner sets the command runner used by systemd checks.
func WithRunner(r Runner) ServiceOption {
	return func(s *ServiceSource) { s.runner = r }
}

// WithProcFS sets the procfs root scanned by process checks.
func WithProcFS(p ProcFS) ServiceOption {
	return func(s *ServiceSource) { s.proc = p }
}

// WithFailedUnits appends systemd units in a failed state to the results.
func WithFailedUnits(enabled bool) ServiceOption {
	return func(s *ServiceSource) { s.watchFailed = enabled }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l logger.Logger) ServiceOption {
	return func(s *ServiceSource) { s.log = l }
}

// NewServiceSource creates a service source.
func NewServiceSource(checks []ServiceCheck, timeout time.Duration, opts ...ServiceOption) *ServiceSource {
	s := &ServiceSource{
		checks:  checks,
		timeout: timeout,
		runner:  ExecRunner{},
		proc:    ProcFS{Root: DefaultProcRoot},
		client:  &http.Client{},
		log:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample implements the source contract. Results keep the configured order,
// followed by failed units when enabled.
func (s *ServiceSource) Sample(ctx context.Context) ([]metrics.ServiceStatus, error) {
	out := make([]metrics.ServiceStatus, len(s.checks))
	var failed []metrics.ServiceStatus

	var g errgroup.Group
	for i, check := range s.checks {
		g.Go(func() error {
			out[i] = s.probe(ctx, check)
			return nil
		})
	}
	if s.watchFailed {
		g.Go(func() error {
			failed = s.failedUnits(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range failed {
		if !s.covers(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// covers reports whether a failed-unit row duplicates a configured check,
// either by name or by a systemd check on the same unit.
func (s *ServiceSource) covers(unit metrics.ServiceStatus) bool {
	for _, c := range s.checks {
		if c.Name == unit.Name {
			return true
		}
		if c.Kind == metrics.ServiceSystemd &&
			(c.Target == unit.Target || c.Target+".service" == unit.Target) {
			return true
		}
	}
	return false
}

func (s *ServiceSource) probe(ctx context.Context, check ServiceCheck) metrics.ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status := metrics.ServiceStatus{
		Name:   check.Name,
		Kind:   check.Kind,
		Target: check.Target,
	}

	start := time.Now()
	var detail string
	var err error

	switch check.Kind {
	case metrics.ServiceTCP:
		detail, err = probeTCP(ctx, check.Target)
	case metrics.ServiceHTTP:
		detail, err = probeHTTP(ctx, s.client, check.Target)
	case metrics.ServiceProcess:
		detail, err = probeProcess(ctx, s.proc, check.Target)
	case metrics.ServiceSystemd:
		detail, err = probeSystemd(ctx, s.runner, check.Target)
	case metrics.ServiceSSH:
		detail, err = probeSSH(ctx, ResolveSSHTarget(check.Target))
	default:
		err = fmt.Errorf("unknown service kind %q", check.Kind)
	}
	elapsed := time.Since(start)

	status.Detail = detail
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %s", s.timeout)
		}
		status.LastError = err.Error()
		s.log.Debug("service %s (%s %s) down: %v", check.Name, check.Kind, check.Target, err)
		return status
	}

	status.Running = true
	status.ResponseTime = &elapsed
	return status
}
