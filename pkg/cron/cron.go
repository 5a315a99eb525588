package cron

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/robfig/cron/v3"

	"github.com/dev-dhg/tgbot/pkg/config"
	"github.com/dev-dhg/tgbot/pkg/messaging"
)

var logger = loggo.GetLogger("tgbot.cron")

// Scheduler sends the configured jobs' messages on their schedules.
type Scheduler struct {
	providers messaging.Registry

	mu      sync.Mutex
	cfg     *config.Config
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

func NewScheduler(cfg *config.Config, providers messaging.Registry) *Scheduler {
	return &Scheduler{
		providers: providers,
		cfg:       cfg,
		cron:      cron.New(locationOption(cfg)...),
		entries:   make(map[string]cron.EntryID),
	}
}

func locationOption(cfg *config.Config) []cron.Option {
	if cfg.Timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Errorf("loading timezone %q: %v, falling back to local time", cfg.Timezone, err)
		return nil
	}
	logger.Infof("cron scheduler using timezone %s", cfg.Timezone)
	return []cron.Option{cron.WithLocation(loc)}
}

// Location returns the time zone schedules are evaluated in.
func (s *Scheduler) Location() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Location()
}

// Start schedules every job and starts the cron loop. Jobs with an
// invalid schedule are logged and skipped.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.cfg.Jobs {
		job := job
		id, err := s.cron.AddFunc(job.Schedule, func() {
			if err := s.RunJob(context.Background(), job); err != nil {
				logger.Errorf("job %s: %v", job.Name, err)
			}
		})
		if err != nil {
			logger.Errorf("scheduling job %s (%q): %v", job.Name, job.Schedule, err)
			continue
		}
		s.entries[job.Name] = id
		logger.Infof("scheduled job %s (%s)", job.Name, job.Schedule)
	}
	s.cron.Start()
}

// Stop stops the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()
	<-c.Stop().Done()
}

// Reload replaces the job set, and the time zone, with the ones in cfg.
func (s *Scheduler) Reload(cfg *config.Config) {
	s.Stop()
	s.mu.Lock()
	s.cfg = cfg
	s.cron = cron.New(locationOption(cfg)...)
	s.entries = make(map[string]cron.EntryID)
	s.mu.Unlock()
	s.Start()
	logger.Infof("scheduler reloaded with %d jobs", len(cfg.Jobs))
}

// Next returns the next activation of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// RunJobByName runs the named job immediately.
func (s *Scheduler) RunJobByName(ctx context.Context, name string) error {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	i := cfg.FindJob(name)
	if i < 0 {
		return errors.NotFoundf("job %q", name)
	}
	return s.RunJob(ctx, cfg.Jobs[i])
}

// RunJob sends the job's text to each of its targets. Delivery continues
// past failing targets; the last failure is returned.
func (s *Scheduler) RunJob(ctx context.Context, job config.Job) error {
	logger.Infof("running job %s", job.Name)
	if len(job.Targets) == 0 {
		logger.Warningf("job %s has no targets", job.Name)
		return nil
	}
	var lastErr error
	for _, target := range job.Targets {
		if err := s.sendToTarget(ctx, target, job.Text); err != nil {
			logger.Errorf("sending job %s to %s via %s: %v", job.Name, target.ID, target.Provider, err)
			lastErr = err
		}
	}
	return errors.Trace(lastErr)
}

func (s *Scheduler) sendToTarget(ctx context.Context, target config.Target, message string) error {
	if target.Provider == "local" {
		logger.Infof("[local %s] %s", target.ID, message)
		return nil
	}
	provider, ok := s.providers.Get(target.Provider)
	if !ok {
		return errors.NotFoundf("provider %q", target.Provider)
	}
	return errors.Trace(provider.SendMessage(ctx, target.ID, message))
}
