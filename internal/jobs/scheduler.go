// Package jobs holds the background work the worker binary schedules: quote
// refresh, price alert evaluation and alert retention cleanup.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler runs registered jobs on cron schedules. Each run gets its own
// timeout-bounded context so a hung job cannot wedge the scheduler.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     log.With().Str("component", "scheduler").Logger(),
		timeout: 5 * time.Minute,
	}
}

// AddJob registers job under a cron schedule ("@every 5m", "@daily", ...).
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		s.log.Debug().Str("job", job.Name()).Msg("Running job")
		if err := job.Run(ctx); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop halts scheduling and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run(ctx)
}
