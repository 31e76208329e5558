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

const itemNotFound = "Item not found"

// ItemHandler handles HTTP requests for items.
type ItemHandler struct {
	service services.ItemServiceProvider
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service services.ItemServiceProvider) *ItemHandler {
	return &ItemHandler{service: service}
}

type itemValidationResponse struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details"`
}

// decodeItem reads an item body. A missing status means "draft".
func decodeItem(w http.ResponseWriter, r *http.Request) (models.Item, bool) {
	item := models.Item{Status: models.DefaultItemStatus}
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return item, false
	}

	errs, err := validationErrors(item)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return item, false
	}
	if len(errs) > 0 {
		details := make(map[string][]string)
		for _, e := range errs {
			details[e.Field()] = append(details[e.Field()], formatFieldError(e))
		}
		writeJSON(w, http.StatusBadRequest, itemValidationResponse{Error: "Validation failed", Details: details})
		return item, false
	}
	return item, true
}

// GetAll returns a page of items.
func (h *ItemHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.service.ListItems(r.Context(), pageFromQuery(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list items")
		writeJSONError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// Get returns a single item.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.fail(w, err, id, "Failed to get item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create stores a new item and points Location at it.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeItem(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateItem(r.Context(), item)
	if err != nil {
		log.Error().Err(err).Str("title", item.Title).Msg("Failed to create item")
		writeJSONError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	w.Header().Set("Location", "/api/items/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces an item. A body id, when given, must match the path.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := decodeItem(w, r)
	if !ok {
		return
	}
	if item.ID != "" && item.ID != id {
		writeJSONError(w, http.StatusBadRequest, "Item id does not match the URL")
		return
	}

	updated, err := h.service.UpdateItem(r.Context(), id, item)
	if err != nil {
		h.fail(w, err, id, "Failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, err, id, "Failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) fail(w http.ResponseWriter, err error, id, msg string) {
	if errors.Is(err, services.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, itemNotFound)
		return
	}
	log.Error().Err(err).Str("item_id", id).Msg(msg)
	writeJSONError(w, http.StatusInternalServerError, msg)
}
