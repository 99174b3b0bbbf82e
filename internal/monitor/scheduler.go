package monitor

import (
	"context"
	"time"

	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// DefaultInterval is the refresh rate when none is configured.
const DefaultInterval = 10 * time.Second

// NextDelay returns how long to wait before the next round, measured from
// the start of the round that just finished. A round that overran its
// interval is followed immediately by the next one.
func NextDelay(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// Rounder runs one sampling round.
type Rounder interface {
	RunRound(ctx context.Context) metrics.Snapshot
}

// Scheduler drives sampling rounds at a fixed cadence.
type Scheduler struct {
	sampler  Rounder
	interval time.Duration
	refresh  chan struct{}
	log      logger.Logger

	// Hooks for tests.
	now      func() time.Time
	newTimer func(d time.Duration) (<-chan time.Time, func() bool)
}

// NewScheduler creates a scheduler running sampler every interval.
func NewScheduler(sampler Rounder, interval time.Duration, log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Scheduler{
		sampler:  sampler,
		interval: interval,
		refresh:  make(chan struct{}, 1),
		log:      log,
		now:      time.Now,
		newTimer: func(d time.Duration) (<-chan time.Time, func() bool) {
			t := time.NewTimer(d)
			return t.C, t.Stop
		},
	}
}

// Interval returns the refresh interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Refresh asks the running loop to start the next round now. Requests made
// while one is already pending are coalesced.
func (s *Scheduler) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Once runs a single round.
func (s *Scheduler) Once(ctx context.Context) metrics.Snapshot {
	return s.sampler.RunRound(ctx)
}

// Run samples, emits the completed snapshot and waits for the next round
// until ctx is done. emit is never called after ctx is done, and a round
// interrupted by cancellation is discarded. Run returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context, emit func(metrics.Snapshot)) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		start := s.now()
		snap := s.sampler.RunRound(ctx)
		if ctx.Err() != nil {
			return nil
		}
		emit(snap)

		delay := NextDelay(s.interval, s.now().Sub(start))
		s.log.Debug("round %d emitted, next in %s", snap.Round, delay)

		timerC, stop := s.newTimer(delay)
		select {
		case <-ctx.Done():
			stop()
			return nil
		case <-s.refresh:
			stop()
		case <-timerC:
		}
	}
}
