package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reelbase/catalog/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so reasons match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct returns the first failing field as an InvalidInput error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal(fmt.Errorf("validate: %w", err))
	}
	first := verrs[0]
	field := first.Field()
	// Dive errors carry the element index ("genre[0]"); report the field.
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	return invalid(field, reason(field, first.Tag(), first.Param()))
}

// validateVar validates a single value under the given field name.
func validateVar(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal(fmt.Errorf("validate %s: %w", field, err))
	}
	return invalid(field, reason(field, verrs[0].Tag(), verrs[0].Param()))
}

func reason(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "email":
		return fmt.Sprintf("field '%s' must be a valid email address", field)
	case "url":
		return fmt.Sprintf("field '%s' must be a valid URL", field)
	case "min":
		return fmt.Sprintf("field '%s' must have at least %s characters or items", field, param)
	case "max":
		return fmt.Sprintf("field '%s' must have at most %s characters or items", field, param)
	case "gte":
		return fmt.Sprintf("field '%s' must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("field '%s' must be at most %s", field, param)
	case "excludes":
		return fmt.Sprintf("field '%s' must not contain '%s'", field, param)
	default:
		return fmt.Sprintf("field '%s' failed validation '%s'", field, tag)
	}
}

// MaxPasswordBytes is bcrypt's input limit. The max=72 tag counts runes, so
// multibyte passwords need this check too.
const MaxPasswordBytes = 72

func passwordBytes(password string) error {
	if len(password) > MaxPasswordBytes {
		return invalid("password", fmt.Sprintf("field 'password' must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

func invalid(field, msg string) error {
	return apperr.Invalid(field, msg)
}

func immutable(field string) error {
	return apperr.Invalid(field, fmt.Sprintf("field '%s' is immutable", field))
}
