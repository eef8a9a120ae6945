// Package dto provides request and response shapes of the HTTP API.
package dto

import (
	"time"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
)

// Envelope wraps every successful response.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// PageQuery holds limit/offset query parameters.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ParseOptionalID parses an optional id field of a JSON body.
func ParseOptionalID(field string, raw *string) (*id.ID, error) {
	if raw == nil {
		return nil, nil
	}
	return id.ParseOptional(field, *raw)
}

// ParseDate parses an optional YYYY-MM-DD query value.
func ParseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperror.NewValidation(field+" must be a date (YYYY-MM-DD)").WithDetail("field", field)
	}
	return &t, nil
}
