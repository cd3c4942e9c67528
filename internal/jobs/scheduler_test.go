package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type janitorStub struct {
	calls     int
	retention time.Duration
	err       error
}

func (j *janitorStub) CleanupSessions(_ context.Context, retention time.Duration) (int64, int64, error) {
	j.calls++
	j.retention = retention
	return 3, 1, j.err
}

func TestCleanupSpecParses(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(CleanupSpec)
	require.NoError(t, err)

	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), sched.Next(from))
}

func TestCleanupSessionsPassesRetention(t *testing.T) {
	janitor := &janitorStub{}
	s := NewScheduler(janitor, 720*time.Hour, zerolog.Nop())

	s.cleanupSessions()
	assert.Equal(t, 1, janitor.calls)
	assert.Equal(t, 720*time.Hour, janitor.retention)

	janitor.err = errors.New("db down")
	s.cleanupSessions()
	assert.Equal(t, 2, janitor.calls)
}

func TestStartWithoutJanitorIsNoop(t *testing.T) {
	s := NewScheduler(nil, time.Hour, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&janitorStub{}, time.Hour, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
