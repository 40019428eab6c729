// Package validation wraps struct validation for request payloads
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a struct's `validate` tags and returns a readable error
func Struct(value any) error {
	if err := validate.Struct(value); err != nil {
		return toReadableError(value, err)
	}
	return nil
}

// Var validates a single value against a validation tag
func Var(value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return toReadableError(value, err)
	}
	return nil
}

func toReadableError(input any, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msg := ""
		for _, fe := range verrs {
			msg += fmt.Sprintf("\n • Failed %T validation for field '%s': rule '%s' expected '%s', got '%v'.", input, fe.StructField(), fe.Tag(), fe.Param(), fe.Value())
		}
		return errors.New(msg)
	}
	return err
}
