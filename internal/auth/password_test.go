package auth

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACHasher_KnownDigest(t *testing.T) {
	salt := []byte("0123456789abcdef")
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte("secret123"))
	want := mac.Sum(nil)

	got := HMACHasher{}.Hash("secret123", salt)
	assert.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got))
	assert.Len(t, got, sha512.Size)
}

func TestHashers_RoundTrip(t *testing.T) {
	hashers := []PasswordHasher{HMACHasher{}, NewArgon2Hasher(WithArgon2Memory(1024))}

	for _, h := range hashers {
		t.Run(h.Scheme(), func(t *testing.T) {
			salt, err := h.GenerateSalt()
			require.NoError(t, err)

			digest := h.Hash("secret123", salt)
			assert.Equal(t, digest, h.Hash("secret123", salt), "hash must be deterministic")
			assert.True(t, h.Verify("secret123", salt, digest))
			assert.False(t, h.Verify("secret124", salt, digest))
			assert.False(t, h.Verify("", salt, digest))
			assert.False(t, h.Verify("secret123", salt, digest[:len(digest)-1]))

			otherSalt, err := h.GenerateSalt()
			require.NoError(t, err)
			assert.NotEqual(t, digest, h.Hash("secret123", otherSalt), "different salts give unlinkable digests")
			assert.False(t, h.Verify("secret123", otherSalt, digest))
		})
	}
}

func TestHashers_SaltSizes(t *testing.T) {
	salt, err := HMACHasher{}.GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, hmacSaltSize)

	salt, err = NewArgon2Hasher().GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, argon2SaltSize)
}

func TestGenerateSalt_Unique(t *testing.T) {
	const trials = 10000
	seen := make(map[string]struct{}, trials)
	h := HMACHasher{}

	for i := 0; i < trials; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		key := string(salt)
		_, dup := seen[key]
		require.False(t, dup, "duplicate salt after %d draws", i)
		seen[key] = struct{}{}
	}
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher(SchemeHMACSHA512)
	require.NoError(t, err)
	assert.Equal(t, SchemeHMACSHA512, h.Scheme())

	h, err = NewPasswordHasher(SchemeArgon2id)
	require.NoError(t, err)
	assert.Equal(t, SchemeArgon2id, h.Scheme())

	_, err = NewPasswordHasher("md5")
	require.Error(t, err)
}

func TestHasherSet(t *testing.T) {
	set, err := DefaultHasherSet(SchemeArgon2id)
	require.NoError(t, err)

	assert.Equal(t, SchemeArgon2id, set.Primary().Scheme())

	h, ok := set.Lookup(SchemeHMACSHA512)
	require.True(t, ok)
	assert.Equal(t, SchemeHMACSHA512, h.Scheme())

	_, ok = set.Lookup("bcrypt")
	assert.False(t, ok)

	_, err = DefaultHasherSet("plaintext")
	require.Error(t, err)
}
