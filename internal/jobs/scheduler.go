package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	// CleanupSpec runs session housekeeping every night at 03:00.
	CleanupSpec = "0 0 3 * * *"

	cleanupTimeout = 5 * time.Minute
)

// SessionJanitor deactivates idle sessions and purges old revoked ones.
type SessionJanitor interface {
	CleanupSessions(ctx context.Context, retention time.Duration) (expired, purged int64, err error)
}

type Scheduler struct {
	cron      *cron.Cron
	janitor   SessionJanitor
	retention time.Duration
	log       zerolog.Logger
}

func NewScheduler(janitor SessionJanitor, retention time.Duration, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		janitor:   janitor,
		retention: retention,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.janitor == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(CleanupSpec, s.cleanupSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running job, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out with a job still running")
	}
}

func (s *Scheduler) cleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	start := time.Now()
	expired, purged, err := s.janitor.CleanupSessions(ctx, s.retention)
	if err != nil {
		s.log.Error().Err(err).Msg("session cleanup failed")
		return
	}
	s.log.Info().
		Int64("expired", expired).
		Int64("purged", purged).
		Dur("took", time.Since(start)).
		Msg("session cleanup finished")
}
