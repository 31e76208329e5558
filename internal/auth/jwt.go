package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/fleet-admin-be/internal/models"
)

var (
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrSignatureMismatch = errors.New("token signature mismatch")
)

// Claims defines the JWT claims structure. The account id is carried both as
// "sub" and as "nameid", and the username as "unique_name", the claim names
// used by existing clients.
type Claims struct {
	NameID     string `json:"nameid,omitempty"`
	UniqueName string `json:"unique_name,omitempty"`
	jwt.RegisteredClaims
}

// AccountID returns the subject account id.
func (c *Claims) AccountID() string {
	if c.NameID != "" {
		return c.NameID
	}
	return c.Subject
}

// Username returns the subject name.
func (c *Claims) Username() string {
	return c.UniqueName
}

// TokenIssuer mints bearer tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(account models.Account) (string, error)
}

// TokenVerifier validates a presented bearer token.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// TokenConfig is the signing configuration shared by issuer and verifier.
type TokenConfig struct {
	Key      string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager creates a TokenManager. Key, issuer and audience are required.
func NewTokenManager(cfg TokenConfig, opts ...TokenOption) (*TokenManager, error) {
	if cfg.Key == "" || cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token signing key, issuer and audience are required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	m := &TokenManager{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return m.now().UTC() }),
	)
	return m, nil
}

// Issue creates a signed token for the account, valid for the configured TTL.
func (m *TokenManager) Issue(account models.Account) (string, error) {
	now := m.now().UTC()
	claims := &Claims{
		NameID:     account.ID,
		UniqueName: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// Verify parses and validates a token string: signature, expiry, issuer and audience.
func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := m.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureMismatch
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.AccountID() == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}
