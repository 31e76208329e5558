package models

import "time"

// DefaultItemStatus is applied to new items that arrive without a status.
const DefaultItemStatus = "draft"

// Item is a generic inventory entry.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Status      string    `json:"status" validate:"required"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
