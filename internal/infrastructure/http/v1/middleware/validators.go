package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"shoppos/internal/domain/billing"
	"shoppos/internal/domain/stock"
)

var (
	barcodePattern = regexp.MustCompile(`^[0-9A-Za-z\-]{4,50}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
)

// RegisterValidators adds the request binding rules used by the DTOs:
// barcode, phone, movement_type, payment_method.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"barcode": func(fl validator.FieldLevel) bool {
			return barcodePattern.MatchString(fl.Field().String())
		},
		"phone": func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		},
		"movement_type": func(fl validator.FieldLevel) bool {
			_, err := stock.ParseMovementType(fl.Field().String())
			return err == nil
		},
		"payment_method": func(fl validator.FieldLevel) bool {
			_, err := billing.ParsePaymentMethod(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
