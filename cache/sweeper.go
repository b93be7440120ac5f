package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirrezaask/cachestore/errors"
)

// Sweepable is satisfied by every *Store[V].
type Sweepable interface {
	FlushExpired(ctx context.Context) ([]string, error)
}

// SweepReport describes one FlushExpired run.
type SweepReport struct {
	Swept []string  `json:"swept"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
	// Skipped is set when another sweeper held the lock.
	Skipped bool `json:"skipped,omitempty"`
}

// SweepLock is a named lock that expires on its own after ttl. Lock returns
// the function that releases this particular acquisition.
type SweepLock interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type SweepReporter interface {
	ReportSweep(ctx context.Context, r SweepReport) error
}

// Sweeper runs FlushExpired on a fixed interval.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	reporter SweepReporter
	logger   *slog.Logger
	clock    Clock

	lock    SweepLock
	lockKey string
	lockTTL time.Duration
}

type SweeperOption func(*Sweeper)

func WithReporter(r SweepReporter) SweeperOption {
	return func(s *Sweeper) { s.reporter = r }
}

func WithSweeperLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) { s.logger = l }
}

func WithSweeperClock(c Clock) SweeperOption {
	return func(s *Sweeper) { s.clock = c }
}

// WithLock makes each run hold key on l, so only one of several sweepers
// sharing a backend flushes at a time. ttl bounds how long a crashed holder
// keeps others out.
func WithLock(l SweepLock, key string, ttl time.Duration) SweeperOption {
	return func(s *Sweeper) {
		s.lock = l
		s.lockKey = key
		s.lockTTL = ttl
	}
}

// NewSweeper fails with ErrInvalidConfig unless interval is positive.
func NewSweeper(target Sweepable, interval time.Duration, opts ...SweeperOption) (*Sweeper, error) {
	if interval <= 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "sweep interval %s is not positive", interval)
	}
	s := &Sweeper{
		target:   target,
		interval: interval,
		logger:   slog.Default(),
		clock:    systemClock{},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// RunOnce flushes expired entries and hands the outcome to the reporter.
func (s *Sweeper) RunOnce(ctx context.Context) SweepReport {
	if s.lock != nil {
		release, err := s.lock.Lock(ctx, s.lockKey, s.lockTTL)
		if err != nil {
			s.logger.DebugContext(ctx, "skipping sweep", "lock", s.lockKey, "err", err)
			return SweepReport{At: s.clock.Now(), Skipped: true}
		}
		defer func() {
			if err := release(ctx); err != nil {
				s.logger.ErrorContext(ctx, "cannot release sweep lock", "lock", s.lockKey, "err", err)
			}
		}()
	}

	swept, err := s.target.FlushExpired(ctx)
	report := SweepReport{Swept: swept, At: s.clock.Now()}
	if err != nil {
		report.Error = err.Error()
		s.logger.ErrorContext(ctx, "sweep finished with errors", "swept", len(swept), "err", err)
	} else {
		s.logger.InfoContext(ctx, "sweep finished", "swept", len(swept))
	}

	if s.reporter != nil {
		if err := s.reporter.ReportSweep(ctx, report); err != nil {
			s.logger.ErrorContext(ctx, "cannot report sweep", "err", err)
		}
	}
	return report
}

// Start sweeps once right away and then every interval until ctx is done or
// stop is called. stop blocks until the running sweep, if any, returns.
func (s *Sweeper) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
