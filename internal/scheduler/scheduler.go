// Package scheduler runs the daily study post on a cron schedule.
package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/robfig/cron/v3"
)

var timeHHMM = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

// Scheduler triggers one job on a schedule.
type Scheduler struct {
	cron  *cron.Cron
	entry cron.EntryID
}

// New creates a scheduler. spec is either a cron expression
// ("0 7 * * 0-5", "@daily") or a plain "HH:MM" time of day.
func New(spec string, loc *time.Location, job func()) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("job must not be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	expr, err := cronExpression(spec)
	if err != nil {
		return nil, err
	}

	c := cron.New(cron.WithLocation(loc))
	id, err := c.AddFunc(expr, job)
	if err != nil {
		return nil, fmt.Errorf("add cron %q: %w", spec, err)
	}
	return &Scheduler{cron: c, entry: id}, nil
}

// Start begins cron execution in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Next returns the next activation time, or zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// NextAfter computes the activation following t without starting.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	return s.cron.Entry(s.entry).Schedule.Next(t)
}

func cronExpression(spec string) (string, error) {
	if spec == "" {
		return "", errors.New("schedule must not be empty")
	}
	if !timeHHMM.MatchString(spec) {
		return spec, nil
	}
	parsed, err := time.Parse("15:04", spec)
	if err != nil {
		return "", fmt.Errorf("invalid time: %w", err)
	}
	return fmt.Sprintf("%d %d * * *", parsed.Minute(), parsed.Hour()), nil
}
