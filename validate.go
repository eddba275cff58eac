package omnidim

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validateInput runs struct-tag validation and reports the first failure as a
// *ValidationError keyed by the JSON field path.
func validateInput(payload any) error {
	err := inputValidator.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fieldPath(fe.Namespace()), Message: formatValidationMessage(fe)}
	}
	return &ValidationError{Message: err.Error()}
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func formatValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %v)", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "gt":
		return "must be a positive integer"
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func positiveID(field string, id int) error {
	if id <= 0 {
		return validationErrorf(field, "must be a positive integer, got %d", id)
	}
	return nil
}

func positiveIDs(field string, ids []int) error {
	if len(ids) == 0 {
		return validationErrorf(field, "must be a non-empty list of integers")
	}
	for i, id := range ids {
		if id <= 0 {
			return validationErrorf(fmt.Sprintf("%s[%d]", field, i), "must be a positive integer, got %d", id)
		}
	}
	return nil
}

// Bool returns a pointer to v, for optional boolean fields.
func Bool(v bool) *bool {
	return &v
}

// Int returns a pointer to v, for optional integer fields.
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v, for optional float fields.
func Float(v float64) *float64 {
	return &v
}
