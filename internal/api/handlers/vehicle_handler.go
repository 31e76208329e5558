package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/fleet-admin-be/internal/models"
	"github.com/isdelr/fleet-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

const (
	vehicleNotFound         = "Vehicle not found"
	msgLicensePlateInvalid  = "License plate is required and must not exceed 20 characters"
	msgLicensePlateUnique   = "License plate must be unique"
	msgInvalidVehicleType   = "Invalid vehicle type"
	msgInvalidVehicleStatus = "Invalid vehicle status"
)

// VehicleHandler handles HTTP requests for the vehicle fleet.
type VehicleHandler struct {
	service services.VehicleServiceProvider
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service services.VehicleServiceProvider) *VehicleHandler {
	return &VehicleHandler{service: service}
}

type vehicleFieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type vehicleValidationResponse struct {
	Error   string              `json:"error"`
	Details []vehicleFieldError `json:"details"`
}

func writeVehicleValidation(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, vehicleValidationResponse{
		Error:   "Validation failed",
		Details: []vehicleFieldError{{Field: field, Error: msg}},
	})
}

// decodeVehicle reads a vehicle body and reports the first invalid field.
func decodeVehicle(w http.ResponseWriter, r *http.Request) (models.VehicleInput, bool) {
	in := models.NewVehicleInput()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return in, false
	}

	errs, err := validationErrors(in)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return in, false
	}
	if len(errs) == 0 {
		return in, true
	}

	switch field := errs[0].Field(); field {
	case "licensePlate":
		writeVehicleValidation(w, field, msgLicensePlateInvalid)
	case "type":
		writeVehicleValidation(w, field, msgInvalidVehicleType)
	case "status":
		writeVehicleValidation(w, field, msgInvalidVehicleStatus)
	default:
		writeVehicleValidation(w, field, formatFieldError(errs[0]))
	}
	return in, false
}

// GetAll returns a page of vehicles.
func (h *VehicleHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	vehicles, total, err := h.service.ListVehicles(r.Context(), pageFromQuery(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list vehicles")
		writeJSONError(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "total": total})
}

// Get returns a single vehicle.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vehicle, err := h.service.GetVehicle(r.Context(), id)
	if err != nil {
		h.fail(w, err, id, "Failed to get vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Create adds a vehicle to the fleet.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeVehicle(w, r)
	if !ok {
		return
	}

	vehicle, err := h.service.CreateVehicle(r.Context(), in)
	if err != nil {
		h.fail(w, err, "", "Failed to create vehicle")
		return
	}

	w.Header().Set("Location", "/api/vehicles/"+vehicle.ID)
	writeJSON(w, http.StatusCreated, vehicle)
}

// Update overwrites a vehicle.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := decodeVehicle(w, r)
	if !ok {
		return
	}

	vehicle, err := h.service.UpdateVehicle(r.Context(), id, in)
	if err != nil {
		h.fail(w, err, id, "Failed to update vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Delete removes a vehicle.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteVehicle(r.Context(), id); err != nil {
		h.fail(w, err, id, "Failed to delete vehicle")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VehicleHandler) fail(w http.ResponseWriter, err error, id, msg string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, vehicleNotFound)
	case errors.Is(err, services.ErrDuplicateLicensePlate):
		writeVehicleValidation(w, "licensePlate", msgLicensePlateUnique)
	default:
		log.Error().Err(err).Str("vehicle_id", id).Msg(msg)
		writeJSONError(w, http.StatusInternalServerError, msg)
	}
}
