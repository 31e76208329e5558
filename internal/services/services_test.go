package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/fleet-admin-be/internal/database"
	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(database.DriverSQLite, filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))
	return db
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// recordingEvents is an in-memory EventServiceProvider.
type recordingEvents struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (r *recordingEvents) CreateEvent(_ context.Context, eventType, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
	return r.err
}

func (r *recordingEvents) GetRecentEvents(context.Context, int) ([]models.Event, error) {
	return nil, nil
}

func (r *recordingEvents) PruneEvents(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *recordingEvents) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}
