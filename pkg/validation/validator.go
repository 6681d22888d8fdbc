package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance. Field names in reported errors
// use the json tag so they match the on-disk record schema.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldError describes the first rule a struct failed
type FieldError struct {
	Field string // dotted path below the root struct, e.g. "followers[2].id"
	Rule  string
	Param string
}

func (e *FieldError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s: field is required", e.Field)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s", e.Field, e.Param)
	case "max", "lte":
		return fmt.Sprintf("%s: must not exceed %s", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", e.Field, e.Rule)
	}
}

// Struct validates v against its `validate` struct tags.
func Struct(v any) error {
	if v == nil {
		return errors.New("cannot validate nil value")
	}
	return formatValidationError(validate.Struct(v))
}

// formatValidationError converts validator errors to a *FieldError for the first failure
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return &FieldError{Field: field, Rule: e.Tag(), Param: e.Param()}
}
