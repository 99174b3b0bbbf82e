package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultSourceTimeout bounds a single source sample when none is configured.
const DefaultSourceTimeout = time.Second

// Source produces one value per sampling round.
type Source[T any] interface {
	Sample(ctx context.Context) (T, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(ctx context.Context) (T, error)

// Sample implements Source.
func (f SourceFunc[T]) Sample(ctx context.Context) (T, error) {
	return f(ctx)
}

// Sources holds one source per family. A nil source marks the family as
// disabled; it is reported as such in every snapshot and never sampled.
type Sources struct {
	CPU      Source[metrics.CPUMetrics]
	Memory   Source[metrics.MemoryMetrics]
	Disk     Source[[]metrics.DiskMetrics]
	Services Source[[]metrics.ServiceStatus]
	Mounts   Source[[]metrics.MountInfo]
	Logs     Source[[]metrics.LogEntry]
}

// Sampler runs one round over every source in parallel. Each source is
// bounded by its own timeout and isolated from the others: an error, a
// timeout or a panic turns into a SourceFailure for that family only.
type Sampler struct {
	sources  Sources
	timeout  time.Duration
	timeouts map[metrics.Family]time.Duration
	log      logger.Logger
	now      func() time.Time
	round    atomic.Uint64
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithFamilyTimeout overrides the timeout of one family. Services use it so
// the individual probes report before the family as a whole gives up.
func WithFamilyTimeout(family metrics.Family, timeout time.Duration) SamplerOption {
	return func(s *Sampler) { s.timeouts[family] = timeout }
}

// WithSamplerLogger sets the logger used for failure and latency reporting.
func WithSamplerLogger(l logger.Logger) SamplerOption {
	return func(s *Sampler) { s.log = l }
}

// NewSampler creates a sampler. timeout is the default per-source budget.
func NewSampler(sources Sources, timeout time.Duration, opts ...SamplerOption) *Sampler {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	s := &Sampler{
		sources:  sources,
		timeout:  timeout,
		timeouts: make(map[metrics.Family]time.Duration),
		log:      logger.Noop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Budget returns the longest time a round can take: the largest family
// timeout.
func (s *Sampler) Budget() time.Duration {
	budget := s.timeout
	for _, t := range s.timeouts {
		budget = max(budget, t)
	}
	return budget
}

func (s *Sampler) timeoutFor(family metrics.Family) time.Duration {
	if t, ok := s.timeouts[family]; ok && t > 0 {
		return t
	}
	return s.timeout
}

// RunRound samples every source once and returns the completed snapshot.
// It never fails: families that could not be sampled carry a SourceFailure.
// Round numbers increase by one per call.
func (s *Sampler) RunRound(ctx context.Context) metrics.Snapshot {
	start := s.now()
	snap := metrics.Snapshot{
		Round:     s.round.Add(1),
		Timestamp: start,
	}

	// Each goroutine writes a distinct field of snap.
	var g errgroup.Group
	g.Go(func() error {
		snap.CPU = sample(ctx, metrics.FamilyCPU, s.sources.CPU, s.timeoutFor(metrics.FamilyCPU))
		return nil
	})
	g.Go(func() error {
		snap.Memory = sample(ctx, metrics.FamilyMemory, s.sources.Memory, s.timeoutFor(metrics.FamilyMemory))
		return nil
	})
	g.Go(func() error {
		snap.Disk = sample(ctx, metrics.FamilyDisk, s.sources.Disk, s.timeoutFor(metrics.FamilyDisk))
		return nil
	})
	g.Go(func() error {
		snap.Services = sample(ctx, metrics.FamilyServices, s.sources.Services, s.timeoutFor(metrics.FamilyServices))
		return nil
	})
	g.Go(func() error {
		snap.Mounts = sample(ctx, metrics.FamilyMounts, s.sources.Mounts, s.timeoutFor(metrics.FamilyMounts))
		return nil
	})
	g.Go(func() error {
		snap.Logs = sample(ctx, metrics.FamilyLogs, s.sources.Logs, s.timeoutFor(metrics.FamilyLogs))
		return nil
	})
	_ = g.Wait()

	snap.Duration = s.now().Sub(start)

	for _, f := range snap.Failures() {
		s.log.Debug("round %d: %v", snap.Round, f)
	}
	s.log.Debug("round %d sampled in %s", snap.Round, snap.Duration)
	return snap
}

type outcome[T any] struct {
	value T
	err   error
}

// sample runs one source under its timeout. A source that ignores its
// context is abandoned once the timeout passes; its late result is dropped.
func sample[T any](ctx context.Context, family metrics.Family, src Source[T], timeout time.Duration) metrics.Result[T] {
	if src == nil {
		return metrics.Fail[T](metrics.NewFailure(family, metrics.FailureDisabled, "disabled in config"))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("source panicked: %v", r)}
			}
		}()
		v, err := src.Sample(ctx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return metrics.Fail[T](failureFor(ctx, family, o.err, timeout))
		}
		return metrics.OK(o.value)
	case <-ctx.Done():
		return metrics.Fail[T](failureFor(ctx, family, ctx.Err(), timeout))
	}
}

func failureFor(ctx context.Context, family metrics.Family, err error, timeout time.Duration) *metrics.SourceFailure {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return metrics.NewFailure(family, metrics.FailureTimeout, fmt.Sprintf("no result within %s", timeout))
	}
	return metrics.FailureFromError(family, err)
}
