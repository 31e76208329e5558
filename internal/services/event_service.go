package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	DefaultEventLimit = 20
	MaxEventLimit     = 100
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	PruneEvents(ctx context.Context, before time.Time) (int64, error)
}

// EventPublisher receives every event after it has been stored.
type EventPublisher interface {
	PublishEvent(event models.Event)
}

// EventService provides business logic for the activity log.
type EventService struct {
	db        *sql.DB
	publisher EventPublisher
	now       func() time.Time
}

// NewEventService creates a new EventService. publisher may be nil.
func NewEventService(db *sql.DB, publisher EventPublisher) *EventService {
	return &EventService{db: db, publisher: publisher, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, created_at) VALUES ($1, $2, $3, $4, $5)",
		event.ID, event.Type, event.Level, event.Message, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishEvent(event)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events, newest first.
// Limits below 1 use the default and larger ones are capped.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit < 1 {
		limit = DefaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, created_at FROM events ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// PruneEvents deletes events created before the given time.
func (s *EventService) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < $1", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

// recordEvent writes to the activity log. Failures are logged and swallowed
// so they never fail the operation being recorded.
func recordEvent(ctx context.Context, events EventServiceProvider, eventType, level, message string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, level, message); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
