// Package validation checks request values against validator tags, including the catalog's
// enum tags "department" and "tool_status".
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})

	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.Department(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("tool_status", func(fl validator.FieldLevel) bool {
		return models.ToolStatus(fl.Field().String()).Valid()
	})

	return v
}

// Struct validates value's tagged fields.
func Struct(value any) error {
	if err := validate.Struct(value); err != nil {
		return toValidationError(err, "")
	}
	return nil
}

// Value validates a single value against tag and reports failures under field.
func Value(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return toValidationError(err, field)
	}
	return nil
}

func toValidationError(err error, field string) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation("%v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		msgs = append(msgs, describe(name, fe))
	}
	return apperrors.Validation("%s", strings.Join(msgs, "; "))
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", field)
	case "department":
		return fmt.Sprintf("%s must be one of %s", field, joinValues(models.Departments))
	case "tool_status":
		return fmt.Sprintf("%s must be one of %s", field, joinValues(models.ToolStatuses))
	default:
		return fmt.Sprintf("%s failed rule '%s' with value '%v'", field, fe.Tag(), fe.Value())
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
