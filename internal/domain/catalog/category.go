package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/entity"
)

// Category groups products.
type Category struct {
	entity.Base
	entity.Activatable

	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

// NewCategory creates an active category.
func NewCategory(name string, description *string) *Category {
	return &Category{
		Base:        entity.NewBase(),
		Activatable: entity.Activatable{IsActive: true},
		Name:        name,
		Description: description,
	}
}

// Validate implements entity.Validatable.
func (c *Category) Validate(_ context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(c.Name) > 100 {
		return apperror.NewValidation("name must be at most 100 characters").WithDetail("field", "name")
	}
	return nil
}
