package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"campus-notifier/internal/common/logger"
)

// Scheduler runs jobs on cron expressions anchored to one time zone.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	logger   logger.Logger
}

func New(timeZone string, log logger.Logger) (*Scheduler, error) {
	loc := time.UTC
	if timeZone != "" {
		var err error
		if loc, err = time.LoadLocation(timeZone); err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", timeZone, err)
		}
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		location: loc,
		logger:   log.WithFields(map[string]interface{}{"component": "scheduler"}),
	}, nil
}

// Add registers fn under a standard five-field cron spec. Overlapping runs of
// the same job are skipped.
func (s *Scheduler) Add(name, spec string, fn func()) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.logger.Info("scheduled job starting", map[string]interface{}{"job": name})
		fn()
	}))

	id, err := s.cron.AddJob(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}

	s.logger.Info("job scheduled", map[string]interface{}{
		"job":      name,
		"schedule": spec,
		"timeZone": s.location.String(),
		"next":     s.cron.Entry(id).Schedule.Next(time.Now().In(s.location)).Format(time.RFC3339),
	})
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with jobs still running", nil)
	}
}

// Next returns the next activation time for spec in the scheduler's zone.
func (s *Scheduler) Next(spec string, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from.In(s.location)), nil
}
