package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/fleet-admin-be/internal/database"
	"github.com/isdelr/fleet-admin-be/internal/models"
)

// VehicleServiceProvider defines the interface for vehicle services.
type VehicleServiceProvider interface {
	ListVehicles(ctx context.Context, page models.PageRequest) ([]models.Vehicle, int, error)
	GetVehicle(ctx context.Context, id string) (models.Vehicle, error)
	CreateVehicle(ctx context.Context, in models.VehicleInput) (models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, in models.VehicleInput) (models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
}

// VehicleService provides business logic for the vehicle fleet.
type VehicleService struct {
	db           *sql.DB
	eventService EventServiceProvider
	now          func() time.Time
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(db *sql.DB, eventService EventServiceProvider) *VehicleService {
	return &VehicleService{db: db, eventService: eventService, now: time.Now}
}

// ListVehicles returns one page of vehicles, newest first, and the total count.
func (s *VehicleService) ListVehicles(ctx context.Context, page models.PageRequest) ([]models.Vehicle, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, license_plate, type, status, created_at, updated_at
		 FROM vehicles ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	vehicles := []models.Vehicle{}
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.LicensePlate, &v.Type, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

// GetVehicle retrieves a single vehicle by its ID.
func (s *VehicleService) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Vehicle{}, ErrNotFound
	}

	var v models.Vehicle
	err := s.db.QueryRowContext(ctx,
		"SELECT id, license_plate, type, status, created_at, updated_at FROM vehicles WHERE id = $1", id).
		Scan(&v.ID, &v.LicensePlate, &v.Type, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vehicle{}, ErrNotFound
		}
		return models.Vehicle{}, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// CreateVehicle stores a new vehicle. The license plate index rejects duplicates.
func (s *VehicleService) CreateVehicle(ctx context.Context, in models.VehicleInput) (models.Vehicle, error) {
	now := s.now().UTC()
	v := models.Vehicle{
		ID:           uuid.New().String(),
		LicensePlate: in.LicensePlate,
		Type:         in.Type,
		Status:       in.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, license_plate, type, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID, v.LicensePlate, string(v.Type), string(v.Status), v.CreatedAt, v.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.Vehicle{}, ErrDuplicateLicensePlate
		}
		return models.Vehicle{}, fmt.Errorf("db error: %w", err)
	}

	recordEvent(ctx, s.eventService, "vehicle.created", "info", fmt.Sprintf("Vehicle '%s' added to the fleet.", v.LicensePlate))
	return v, nil
}

// UpdateVehicle overwrites the writable fields of a vehicle. Keeping its own
// plate is allowed; taking another vehicle's plate is ErrDuplicateLicensePlate.
func (s *VehicleService) UpdateVehicle(ctx context.Context, id string, in models.VehicleInput) (models.Vehicle, error) {
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return models.Vehicle{}, err
	}

	v.LicensePlate = in.LicensePlate
	v.Type = in.Type
	v.Status = in.Status
	v.UpdatedAt = s.now().UTC()

	res, err := s.db.ExecContext(ctx,
		"UPDATE vehicles SET license_plate = $1, type = $2, status = $3, updated_at = $4 WHERE id = $5",
		v.LicensePlate, string(v.Type), string(v.Status), v.UpdatedAt, id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.Vehicle{}, ErrDuplicateLicensePlate
		}
		return models.Vehicle{}, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Vehicle{}, ErrNotFound
	}

	recordEvent(ctx, s.eventService, "vehicle.updated", "info", fmt.Sprintf("Vehicle '%s' updated.", v.LicensePlate))
	return v, nil
}

// DeleteVehicle removes a vehicle from the fleet.
func (s *VehicleService) DeleteVehicle(ctx context.Context, id string) error {
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM vehicles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	recordEvent(ctx, s.eventService, "vehicle.deleted", "warn", fmt.Sprintf("Vehicle '%s' was removed from the fleet.", v.LicensePlate))
	return nil
}
