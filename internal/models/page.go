package models

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int.
	MaxPage = math.MaxInt / MaxLimit
)

// PageRequest selects a window of a list ordered newest first.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest applies defaults to out-of-range values and caps page and limit.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the number of rows skipped before the page starts.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
