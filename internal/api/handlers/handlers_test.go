package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/isdelr/fleet-admin-be/internal/services"
	"github.com/stretchr/testify/assert"
)

var errStorage = errors.New("database is locked")

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errStorage }

type failingAuth struct{}

func (failingAuth) Register(context.Context, string, string) (models.Account, error) {
	return models.Account{}, errStorage
}
func (failingAuth) Login(context.Context, string, string) (string, error) { return "", errStorage }
func (failingAuth) Account(context.Context, string) (models.Account, error) {
	return models.Account{}, errStorage
}

type failingItems struct{ services.ItemServiceProvider }

func (failingItems) ListItems(context.Context, models.PageRequest) ([]models.Item, int, error) {
	return nil, 0, errStorage
}

type failingEvents struct{}

func (failingEvents) CreateEvent(context.Context, string, string, string) error { return errStorage }
func (failingEvents) GetRecentEvents(context.Context, int) ([]models.Event, error) {
	return nil, errStorage
}
func (failingEvents) PruneEvents(context.Context, time.Time) (int64, error) { return 0, errStorage }

func TestStorageFailuresAreServerErrors(t *testing.T) {
	authHandler := NewAuthHandler(failingAuth{})
	body := `{"username":"alice","password":"secret123"}`

	cases := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    string
		status  int
	}{
		{"register", authHandler.Register, http.MethodPost, body, http.StatusInternalServerError},
		{"login", authHandler.Login, http.MethodPost, body, http.StatusInternalServerError},
		{"list items", NewItemHandler(failingItems{}).GetAll, http.MethodGet, "", http.StatusInternalServerError},
		{"events", NewEventHandler(failingEvents{}).GetRecent, http.MethodGet, "", http.StatusInternalServerError},
		{"health", NewHealthHandler(failingPinger{}).Check, http.MethodGet, "", http.StatusServiceUnavailable},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(c.method, "/", strings.NewReader(c.body))
			rec := httptest.NewRecorder()
			c.handler(rec, req)

			assert.Equal(t, c.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), errStorage.Error())
		})
	}
}

func TestGetMe_WithoutClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAuthHandler(failingAuth{}).GetMe(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type notFoundVehicles struct{ services.VehicleServiceProvider }

func (notFoundVehicles) UpdateVehicle(context.Context, string, models.VehicleInput) (models.Vehicle, error) {
	return models.Vehicle{}, services.ErrNotFound
}

func TestVehicleUpdate_NotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Put("/api/vehicles/{id}", NewVehicleHandler(notFoundVehicles{}).Update)

	req := httptest.NewRequest(http.MethodPut, "/api/vehicles/abc", strings.NewReader(`{"licensePlate":"X-1"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Vehicle not found"}`, rec.Body.String())
}

func TestPageFromQuery(t *testing.T) {
	cases := []struct {
		query string
		want  models.PageRequest
	}{
		{"", models.PageRequest{Page: 1, Limit: 10}},
		{"page=3&limit=25", models.PageRequest{Page: 3, Limit: 25}},
		{"page=abc&limit=1000", models.PageRequest{Page: 1, Limit: 100}},
		{"page=-1&limit=0", models.PageRequest{Page: 1, Limit: 10}},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/items?"+c.query, nil)
		assert.Equal(t, c.want, pageFromQuery(req), c.query)
	}
}
