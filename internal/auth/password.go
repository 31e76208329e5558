package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SchemeHMACSHA512 = "hmac-sha512"
	SchemeArgon2id   = "argon2id"

	// hmacSaltSize matches the default key size of an HMAC-SHA512 instance
	// (the hash block size), which is what existing records were created with.
	hmacSaltSize   = 128
	argon2SaltSize = 16
)

// PasswordHasher derives a verifiable digest from a password and a per-account salt.
type PasswordHasher interface {
	// Scheme names the algorithm; it is stored next to every digest.
	Scheme() string
	// GenerateSalt returns a fresh random salt.
	GenerateSalt() ([]byte, error)
	// Hash is deterministic for a given password and salt.
	Hash(password string, salt []byte) []byte
	// Verify recomputes the digest and compares it in constant time.
	Verify(password string, salt, digest []byte) bool
}

// NewPasswordHasher returns the hasher for a scheme name.
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case SchemeHMACSHA512:
		return HMACHasher{}, nil
	case SchemeArgon2id:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", scheme)
	}
}

// HMACHasher computes HMAC-SHA512 over the UTF-8 password, keyed by the salt.
type HMACHasher struct{}

func (HMACHasher) Scheme() string { return SchemeHMACSHA512 }

func (HMACHasher) GenerateSalt() ([]byte, error) { return randomBytes(hmacSaltSize) }

func (HMACHasher) Hash(password string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

func (h HMACHasher) Verify(password string, salt, digest []byte) bool {
	return hmac.Equal(h.Hash(password, salt), digest)
}

// Argon2Hasher derives digests with argon2id.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

// Argon2Option configures the argon2id hasher.
type Argon2Option func(*Argon2Hasher)

// WithArgon2Memory sets the memory cost in KiB (default: 64 MiB).
func WithArgon2Memory(kib uint32) Argon2Option {
	return func(h *Argon2Hasher) {
		if kib > 0 {
			h.memory = kib
		}
	}
}

// WithArgon2Time sets the number of passes (default: 1).
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Argon2Hasher) {
		if t > 0 {
			h.time = t
		}
	}
}

// NewArgon2Hasher creates an argon2id hasher with the recommended defaults.
func NewArgon2Hasher(opts ...Argon2Option) *Argon2Hasher {
	h := &Argon2Hasher{time: 1, memory: 64 * 1024, threads: 4, keyLen: 32}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2Hasher) Scheme() string { return SchemeArgon2id }

func (h *Argon2Hasher) GenerateSalt() ([]byte, error) { return randomBytes(argon2SaltSize) }

func (h *Argon2Hasher) Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)
}

func (h *Argon2Hasher) Verify(password string, salt, digest []byte) bool {
	return subtle.ConstantTimeCompare(h.Hash(password, salt), digest) == 1
}

// HasherSet resolves the hasher for a stored scheme and designates the one
// used for new accounts.
type HasherSet struct {
	primary PasswordHasher
	byName  map[string]PasswordHasher
}

// NewHasherSet registers the given hashers; the first one hashes new passwords.
func NewHasherSet(primary PasswordHasher, others ...PasswordHasher) *HasherSet {
	s := &HasherSet{primary: primary, byName: map[string]PasswordHasher{primary.Scheme(): primary}}
	for _, h := range others {
		if _, ok := s.byName[h.Scheme()]; !ok {
			s.byName[h.Scheme()] = h
		}
	}
	return s
}

// DefaultHasherSet knows every supported scheme and hashes new passwords with primaryScheme.
func DefaultHasherSet(primaryScheme string) (*HasherSet, error) {
	primary, err := NewPasswordHasher(primaryScheme)
	if err != nil {
		return nil, err
	}
	return NewHasherSet(primary, HMACHasher{}, NewArgon2Hasher()), nil
}

// Primary returns the hasher for new passwords.
func (s *HasherSet) Primary() PasswordHasher { return s.primary }

// Lookup returns the hasher that produced digests of the given scheme.
func (s *HasherSet) Lookup(scheme string) (PasswordHasher, bool) {
	h, ok := s.byName[scheme]
	return h, ok
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return buf, nil
}
