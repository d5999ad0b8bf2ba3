package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is a named piece of daily maintenance work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs its jobs once a day at a fixed wall-clock time,
// independent of any user interaction.
type Scheduler struct {
	at   string // "HH:MM"
	jobs []Job
	log  *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(at string, logger *zerolog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		at:   at,
		jobs: jobs,
		log:  logger,
		done: make(chan struct{}),
	}
}

// Start begins the scheduler loop in a background goroutine.
// Calling Start multiple times has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		// already started
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

func (s *Scheduler) loop() {
	defer close(s.done)

	s.log.Info().Str("at", s.at).Int("jobs", len(s.jobs)).Msg("scheduler started")
	for {
		wait := untilNext(s.at, time.Now())
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("scheduler stopping")
			return
		case <-time.After(wait):
			s.runAll()
		}
	}
}

func (s *Scheduler) runAll() {
	for _, job := range s.jobs {
		runCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
		if err := job.Run(runCtx); err != nil {
			s.log.Error().Err(err).Str("job", job.Name).Msg("scheduled job failed")
		} else {
			s.log.Info().Str("job", job.Name).Msg("scheduled job finished")
		}
		cancel()
	}
}

// untilNext returns the duration until the next occurrence of the "HH:MM"
// wall-clock time, always in the future.
func untilNext(at string, now time.Time) time.Duration {
	t, err := time.Parse("15:04", at)
	if err != nil {
		// config validates the format; fall back to daily from now
		return 24 * time.Hour
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Stop cancels the scheduler and waits for the loop to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		// not started
		return
	}
	s.cancel()
	<-s.done
}
