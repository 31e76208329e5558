package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pruneRecorder struct {
	cutoff time.Time
	n      int64
	err    error
}

func (p *pruneRecorder) CreateEvent(context.Context, string, string, string) error { return nil }

func (p *pruneRecorder) GetRecentEvents(context.Context, int) ([]models.Event, error) {
	return nil, nil
}

func (p *pruneRecorder) PruneEvents(_ context.Context, before time.Time) (int64, error) {
	p.cutoff = before
	return p.n, p.err
}

func TestScheduler_PruneNowUsesRetention(t *testing.T) {
	rec := &pruneRecorder{n: 4}
	s, err := NewScheduler(rec, 48*time.Hour, "@daily")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC) }

	n, err := s.PruneNow(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), rec.cutoff)
}

func TestScheduler_PruneErrors(t *testing.T) {
	rec := &pruneRecorder{err: errors.New("db down")}
	s, err := NewScheduler(rec, time.Hour, "0 3 * * *")
	require.NoError(t, err)

	_, err = s.PruneNow(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler(&pruneRecorder{}, time.Hour, "every tuesday")
	assert.ErrorContains(t, err, "invalid prune schedule")
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(&pruneRecorder{}, time.Hour, "@every 1h")
	require.NoError(t, err)
	s.Run()
	s.Stop()
}
