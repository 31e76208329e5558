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

// CredentialStore persists accounts. It is the only writer of account records.
type CredentialStore interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, scheme string, salt, digest []byte) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
}

// AccountService is the SQL-backed CredentialStore.
type AccountService struct {
	db  *sql.DB
	now func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{db: db, now: time.Now}
}

// Exists reports whether an account with exactly this username exists.
func (s *AccountService) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Create inserts a new account. The unique index on username decides races
// between concurrent registrations; a violation is reported as ErrDuplicateUsername.
func (s *AccountService) Create(ctx context.Context, username, scheme string, salt, digest []byte) (models.Account, error) {
	account := models.Account{
		ID:             uuid.New().String(),
		Username:       username,
		PasswordScheme: scheme,
		PasswordSalt:   salt,
		PasswordDigest: digest,
		CreatedAt:      s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_scheme, password_salt, password_digest, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Username, account.PasswordScheme, account.PasswordSalt, account.PasswordDigest, account.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.Account{}, ErrDuplicateUsername
		}
		return models.Account{}, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

// FindByUsername retrieves an account, including its salt and digest.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	return s.findOne(ctx,
		`SELECT id, username, password_scheme, password_salt, password_digest, created_at
		 FROM accounts WHERE username = $1`, username)
}

// FindByID retrieves an account by its id.
func (s *AccountService) FindByID(ctx context.Context, id string) (models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Account{}, ErrNotFound
	}
	return s.findOne(ctx,
		`SELECT id, username, password_scheme, password_salt, password_digest, created_at
		 FROM accounts WHERE id = $1`, id)
}

func (s *AccountService) findOne(ctx context.Context, query string, arg string) (models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Username, &a.PasswordScheme, &a.PasswordSalt, &a.PasswordDigest, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
