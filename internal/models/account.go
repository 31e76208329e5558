package models

import "time"

// Account represents a set of login credentials.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordScheme string    `json:"-"`
	PasswordSalt   []byte    `json:"-"` // Never expose this to the client
	PasswordDigest []byte    `json:"-"` // Never expose this to the client
	CreatedAt      time.Time `json:"createdAt"`
}
