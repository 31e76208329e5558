package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/fleet-admin-be/internal/models"
)

// ItemServiceProvider defines the interface for item services.
type ItemServiceProvider interface {
	ListItems(ctx context.Context, page models.PageRequest) ([]models.Item, int, error)
	GetItem(ctx context.Context, id string) (models.Item, error)
	CreateItem(ctx context.Context, item models.Item) (models.Item, error)
	UpdateItem(ctx context.Context, id string, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// ItemService provides business logic for item management.
type ItemService struct {
	db           *sql.DB
	eventService EventServiceProvider
	now          func() time.Time
}

// NewItemService creates a new ItemService.
func NewItemService(db *sql.DB, eventService EventServiceProvider) *ItemService {
	return &ItemService{db: db, eventService: eventService, now: time.Now}
}

// ListItems returns one page of items, newest first, and the total count.
func (s *ItemService) ListItems(ctx context.Context, page models.PageRequest) ([]models.Item, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, created_at, updated_at
		 FROM items ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetItem retrieves a single item by its ID.
func (s *ItemService) GetItem(ctx context.Context, id string) (models.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Item{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, description, status, created_at, updated_at FROM items WHERE id = $1", id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, ErrNotFound
		}
		return models.Item{}, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// CreateItem stores a new item with a fresh id and timestamps.
func (s *ItemService) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	now := s.now().UTC()
	item.ID = uuid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = models.DefaultItemStatus
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, title, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.Title, nullable(item.Description), item.Status, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return models.Item{}, fmt.Errorf("db error: %w", err)
	}

	recordEvent(ctx, s.eventService, "item.created", "info", fmt.Sprintf("Item '%s' created.", item.Title))
	return item, nil
}

// UpdateItem replaces the title, description and status of an existing item.
func (s *ItemService) UpdateItem(ctx context.Context, id string, item models.Item) (models.Item, error) {
	existing, err := s.GetItem(ctx, id)
	if err != nil {
		return models.Item{}, err
	}

	existing.Title = item.Title
	existing.Description = item.Description
	existing.Status = item.Status
	existing.UpdatedAt = s.now().UTC()

	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET title = $1, description = $2, status = $3, updated_at = $4 WHERE id = $5",
		existing.Title, nullable(existing.Description), existing.Status, existing.UpdatedAt, id)
	if err != nil {
		return models.Item{}, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Item{}, ErrNotFound
	}

	recordEvent(ctx, s.eventService, "item.updated", "info", fmt.Sprintf("Item '%s' updated.", existing.Title))
	return existing, nil
}

// DeleteItem removes an item.
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	recordEvent(ctx, s.eventService, "item.deleted", "warn", fmt.Sprintf("Item '%s' was deleted.", item.Title))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var (
		item        models.Item
		description sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Title, &description, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return models.Item{}, err
	}
	if description.Valid {
		item.Description = &description.String
	}
	return item, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
