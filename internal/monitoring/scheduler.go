package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/fleet-admin-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler periodically prunes the activity log.
type Scheduler struct {
	eventSvc  services.EventServiceProvider
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewScheduler creates a scheduler that deletes events older than retention
// on the given cron spec (standard five fields or a descriptor such as "@daily").
func NewScheduler(eventSvc services.EventServiceProvider, retention time.Duration, spec string) (*Scheduler, error) {
	s := &Scheduler{
		eventSvc:  eventSvc,
		retention: retention,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.prune); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Dur("retention", s.retention).Msg("Starting event retention scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped event retention scheduler")
}

func (s *Scheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.PruneNow(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduler: failed to prune events")
	}
}

// PruneNow deletes events older than the retention window.
func (s *Scheduler) PruneNow(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.retention)
	n, err := s.eventSvc.PruneEvents(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("Pruned activity events")
	}
	return n, nil
}
