// Package sweeper drives the periodic listing expiry sweeps.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is the sweep entry point, implemented by the listing manager.
type Sweepable interface {
	SweepExpired(ctx context.Context, now time.Time) (pendingRemoved, activeRemoved int64, err error)
}

// Sweeper runs sweeps on a fixed interval until its context ends.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	log      *slog.Logger
}

// New builds a Sweeper. interval <= 0 falls back to 5 minutes.
func New(target Sweepable, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{target: target, interval: interval, log: logger}
}

// Run blocks until ctx is done. One sweep fires immediately so a restart does
// not leave expired rows sitting for a full interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, _, err := s.target.SweepExpired(ctx, time.Now()); err != nil {
		s.log.Error("listing sweep failed", "err", err)
	}
}
