package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/fleet-admin-be/internal/auth"
	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/rs/zerolog/log"
)

// AuthServiceProvider defines the interface for registration and login.
type AuthServiceProvider interface {
	Register(ctx context.Context, username, password string) (models.Account, error)
	Login(ctx context.Context, username, password string) (string, error)
	Account(ctx context.Context, id string) (models.Account, error)
}

// AuthService ties the credential store, the password hashers and the token issuer together.
type AuthService struct {
	store        CredentialStore
	hashers      *auth.HasherSet
	tokens       auth.TokenIssuer
	eventService EventServiceProvider

	// Verified against when the username is unknown.
	dummySalt   []byte
	dummyDigest []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(store CredentialStore, hashers *auth.HasherSet, tokens auth.TokenIssuer, eventService EventServiceProvider) (*AuthService, error) {
	primary := hashers.Primary()
	salt, err := primary.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &AuthService{
		store:        store,
		hashers:      hashers,
		tokens:       tokens,
		eventService: eventService,
		dummySalt:    salt,
		dummyDigest:  primary.Hash("", salt),
	}, nil
}

// Register creates an account with a fresh salt under the primary scheme.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.Account, error) {
	exists, err := s.store.Exists(ctx, username)
	if err != nil {
		return models.Account{}, err
	}
	if exists {
		return models.Account{}, ErrDuplicateUsername
	}

	hasher := s.hashers.Primary()
	salt, err := hasher.GenerateSalt()
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	digest := hasher.Hash(password, salt)

	// A concurrent registration can still win between Exists and Create; the
	// unique index turns that into ErrDuplicateUsername as well.
	account, err := s.store.Create(ctx, username, hasher.Scheme(), salt, digest)
	if err != nil {
		return models.Account{}, err
	}

	recordEvent(ctx, s.eventService, "account.registered", "info", fmt.Sprintf("Account '%s' registered.", username))
	return account, nil
}

// Login checks the password and returns a signed token. An unknown username
// and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
		s.hashers.Primary().Verify(password, s.dummySalt, s.dummyDigest)
		s.loginFailed(ctx, username)
		return "", ErrInvalidCredentials
	}

	hasher, ok := s.hashers.Lookup(account.PasswordScheme)
	if !ok {
		log.Error().Str("scheme", account.PasswordScheme).Str("account_id", account.ID).Msg("Account uses an unknown password scheme")
		s.loginFailed(ctx, username)
		return "", ErrInvalidCredentials
	}
	if !hasher.Verify(password, account.PasswordSalt, account.PasswordDigest) {
		s.loginFailed(ctx, username)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	recordEvent(ctx, s.eventService, "account.login", "info", fmt.Sprintf("Account '%s' logged in.", username))
	return token, nil
}

// Account returns the account behind a verified token subject.
func (s *AuthService) Account(ctx context.Context, id string) (models.Account, error) {
	return s.store.FindByID(ctx, id)
}

func (s *AuthService) loginFailed(ctx context.Context, username string) {
	log.Warn().Str("username", username).Msg("Failed login attempt")
	recordEvent(ctx, s.eventService, "account.login_failed", "warn", fmt.Sprintf("Failed login for '%s'.", username))
}
