package shared

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest validates v, preferring its own Validate method when it
// has one.
func ValidateRequest(v any) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
