package services

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when registering a username that is already taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials is returned for an unknown username or a wrong
	// password alike, so callers cannot tell which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateLicensePlate is returned when another vehicle already uses the plate.
	ErrDuplicateLicensePlate = errors.New("license plate already exists")
)
