// Package id is the identifier type of every shoppos row. IDs are UUIDv7, so
// they sort by creation time and index well as primary keys.
package id

import (
	"strings"

	"github.com/google/uuid"

	"shoppos/internal/core/apperror"
)

type ID = uuid.UUID

// New returns a UUIDv7, or a random v4 if the clock source fails.
func New() ID {
	if v7, err := uuid.NewV7(); err == nil {
		return v7
	}
	return uuid.New()
}

func Parse(s string) (ID, error) { return uuid.Parse(s) }

// MustParse is for fixtures and constants.
func MustParse(s string) ID { return uuid.MustParse(s) }

func Nil() ID { return uuid.Nil }

func IsNil(v ID) bool { return v == uuid.Nil }

// ParseField parses a client-supplied id. Failures are validation errors
// naming field, e.g. "invalid product_id".
func ParseField(field, s string) (ID, error) {
	v, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, apperror.NewValidation("invalid "+field).WithDetail("field", field)
	}
	return v, nil
}

// ParseOptional is ParseField for optional references such as customer_id;
// blank input yields nil.
func ParseOptional(field, s string) (*ID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := ParseField(field, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
