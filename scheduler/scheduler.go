package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"themeplane/logging"
)

// Job is a unit of periodic maintenance work.
type Job func(ctx context.Context, now time.Time) error

// Scheduler runs a job on a fixed interval, e.g. pruning old revisions.
type Scheduler struct {
	mu      sync.Mutex
	name    string
	every   time.Duration
	job     Job
	lastRun time.Time
	logger  zerolog.Logger
}

func New(name string, every time.Duration, job Job) *Scheduler {
	return &Scheduler{
		name:   name,
		every:  every,
		job:    job,
		logger: logging.Component("scheduler").With().Str("job", name).Logger(),
	}
}

// ParseInterval reads a duration setting. Empty, "0" and "off" disable the
// job and return zero.
func ParseInterval(s string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "off":
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid interval %q: must be positive", s)
	}
	return d, nil
}

// Start runs the job once and then on every tick until ctx is done. It does
// nothing when the interval is zero.
func (s *Scheduler) Start(ctx context.Context) {
	if s.every <= 0 {
		return
	}

	go func() {
		s.logger.Info().Dur("every", s.every).Msg("started")
		s.Check(ctx, time.Now())

		ticker := time.NewTicker(s.every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("stopped")
				return
			case now := <-ticker.C:
				s.Check(ctx, now)
			}
		}
	}()
}

// Check runs the job when it is due and reports whether it ran. A failed
// run is retried on the next check.
func (s *Scheduler) Check(ctx context.Context, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !shouldRun(s.every, s.lastRun, now) {
		return false
	}
	if err := s.job(ctx, now); err != nil {
		s.logger.Warn().Err(err).Msg("run failed")
		return false
	}
	s.lastRun = now
	return true
}

func shouldRun(every time.Duration, lastRun, now time.Time) bool {
	if every <= 0 {
		return false
	}
	if lastRun.IsZero() {
		return true
	}
	return now.Sub(lastRun) >= every
}

// LastRun returns when the job last succeeded, or the zero time.
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
