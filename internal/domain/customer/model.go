// Package customer provides customer records and their purchase aggregate.
package customer

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/entity"
)

// PointsPerCurrencyUnit is the spend that earns one loyalty point.
var PointsPerCurrencyUnit = decimal.NewFromInt(100)

var (
	validate  = validator.New()
	phoneExpr = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
)

// Customer is a buyer with a running purchase aggregate.
// TotalPurchases and LoyaltyPoints change only through billing.
type Customer struct {
	entity.Base
	entity.Activatable

	Name           string          `db:"name" json:"name"`
	Phone          *string         `db:"phone" json:"phone,omitempty"`
	Email          *string         `db:"email" json:"email,omitempty"`
	Address        *string         `db:"address" json:"address,omitempty"`
	TotalPurchases decimal.Decimal `db:"total_purchases" json:"total_purchases"`
	LoyaltyPoints  int             `db:"loyalty_points" json:"loyalty_points"`
}

// NewCustomer creates an active customer with an empty aggregate.
func NewCustomer(name string) *Customer {
	return &Customer{
		Base:           entity.NewBase(),
		Activatable:    entity.Activatable{IsActive: true},
		Name:           name,
		TotalPurchases: decimal.Zero,
	}
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(_ context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(c.Name) > 100 {
		return apperror.NewValidation("name must be at most 100 characters").WithDetail("field", "name")
	}

	c.Phone = trimOptional(c.Phone)
	if c.Phone != nil && !phoneExpr.MatchString(*c.Phone) {
		return apperror.NewValidation("phone is not a valid phone number").WithDetail("field", "phone")
	}

	c.Email = trimOptional(c.Email)
	if c.Email != nil {
		if err := validate.Var(*c.Email, "email,max=255"); err != nil {
			return apperror.NewValidation("email is not a valid address").WithDetail("field", "email")
		}
	}

	c.Address = trimOptional(c.Address)
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// LoyaltyPointsFor returns the points earned by a bill of total: one point
// per full 100 currency units.
func LoyaltyPointsFor(total decimal.Decimal) int {
	if !total.IsPositive() {
		return 0
	}
	return int(total.Div(PointsPerCurrencyUnit).Floor().IntPart())
}

// Input carries the editable fields of a customer.
type Input struct {
	Name    string
	Phone   *string
	Email   *string
	Address *string
}

func (in Input) apply(c *Customer) {
	c.Name = in.Name
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
}
