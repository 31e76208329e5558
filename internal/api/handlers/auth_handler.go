package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/isdelr/fleet-admin-be/internal/auth"
	"github.com/isdelr/fleet-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and the current account.
type AuthHandler struct {
	service services.AuthServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// CredentialsPayload is the body of register and login requests.
type CredentialsPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// registrationLimits bounds what a new account may store. Login skips it so
// oversized input is just another unknown credential.
type registrationLimits struct {
	Username string `json:"username" validate:"max=100"`
	Password string `json:"password" validate:"max=1024"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsPayload, bool) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return payload, false
	}
	errs, err := validationErrors(payload)
	if err != nil || len(errs) > 0 {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return payload, false
	}
	return payload, true
}

// Register handles new account registration. Success has an empty body.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	errs, err := validationErrors(registrationLimits(payload))
	if err != nil || len(errs) > 0 {
		http.Error(w, "Username or password is too long", http.StatusBadRequest)
		return
	}

	if _, err := h.service.Register(r.Context(), payload.Username, payload.Password); err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			http.Error(w, "Username already exists", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register account")
		http.Error(w, "Failed to register account", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to log in")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetMe returns the account the bearer token was issued to.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	account, err := h.service.Account(r.Context(), claims.AccountID())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Warn().Str("account_id", claims.AccountID()).Msg("Account from token not found")
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("account_id", claims.AccountID()).Msg("Failed to load account")
		http.Error(w, "Failed to load account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{ID: account.ID, Username: account.Username, CreatedAt: account.CreatedAt})
}
