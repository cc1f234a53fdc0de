// ==============================================================================
// VALIDATOR PACKAGE - pkg/validator/validator.go
// ==============================================================================
package validator

import (
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	phoneRe         = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)
	accountNumberRe = regexp.MustCompile(`^[\d]+$`)
	ibanRe          = regexp.MustCompile(`^[A-Z0-9]{2}[0-9]{2}[A-Z0-9]{1,30}$`)
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		// Format validation errors
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

// ValidateStructured returns a map of field -> error message for frontend usage
func (v *Validator) ValidateStructured(i interface{}) map[string]string {
	errs := make(map[string]string)
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				msg := fmt.Sprintf("failed validation on '%s'", e.Tag())
				switch e.Tag() {
				case "required":
					msg = "This field is required"
				case "email":
					msg = "Invalid email address"
				case "min":
					msg = fmt.Sprintf("Must be at least %s characters", e.Param())
				case "max":
					msg = fmt.Sprintf("Must be at most %s characters", e.Param())
				case "wallet_phone":
					msg = "Invalid phone number format"
				case "account_number":
					msg = "Account number must contain digits only"
				case "iban":
					msg = "Invalid IBAN format"
				}
				errs[e.Field()] = msg
			}
		} else {
			errs["_global"] = err.Error()
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *Validator) registerCustomValidations() {
	// Register decimal.Decimal to be validated as float64 for gt/lt checks
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := val.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Phone numbers as entered on the recharge/withdrawal forms: optional
	// leading +, then digits, spaces, dashes, parentheses.
	_ = v.validate.RegisterValidation("wallet_phone", func(fl validator.FieldLevel) bool {
		phone := strings.TrimSpace(fl.Field().String())
		if phone == "" {
			return false
		}
		return phoneRe.MatchString(phone)
	})

	_ = v.validate.RegisterValidation("account_number", func(fl validator.FieldLevel) bool {
		return accountNumberRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	// IBAN is optional on the bank withdrawal form; empty passes, anything
	// else must match.
	_ = v.validate.RegisterValidation("iban", func(fl validator.FieldLevel) bool {
		iban := strings.TrimSpace(fl.Field().String())
		if iban == "" {
			return true
		}
		return ibanRe.MatchString(iban)
	})
}

// Sanitize cleans string input to prevent XSS attacks
func Sanitize(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}
