package validation

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // config section name for error messages
}

// NewConfigValidator creates a new config validator for the named section.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

func (cv *ConfigValidator) addf(field, format string, args ...any) *ConfigValidator {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s", cv.name, field, fmt.Sprintf(format, args...)))
	return cv
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		return cv.addf(field, "required field is empty")
	}
	return cv
}

// NotEmpty validates that a list field has at least one element.
func (cv *ConfigValidator) NotEmpty(field string, values []string) *ConfigValidator {
	if len(values) == 0 {
		return cv.addf(field, "list must not be empty")
	}
	for i, v := range values {
		if v == "" {
			return cv.addf(field, "element %d is empty", i)
		}
	}
	return cv
}

// MinInt validates that an int field is at least the minimum value.
func (cv *ConfigValidator) MinInt(field string, value, min int) *ConfigValidator {
	if value < min {
		return cv.addf(field, "value %d is below minimum %d", value, min)
	}
	return cv
}

// RangeInt validates that an int field is within [min, max].
func (cv *ConfigValidator) RangeInt(field string, value, min, max int) *ConfigValidator {
	if value < min || value > max {
		return cv.addf(field, "value %d is outside range [%d, %d]", value, min, max)
	}
	return cv
}

// Positive validates that an int field is positive (> 0).
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		return cv.addf(field, "value %d must be positive", value)
	}
	return cv
}

// PositiveFloat validates that a float field is positive (> 0).
func (cv *ConfigValidator) PositiveFloat(field string, value float64) *ConfigValidator {
	if value <= 0 {
		return cv.addf(field, "value %g must be positive", value)
	}
	return cv
}

// RangeFloat validates that a float field is within [min, max].
func (cv *ConfigValidator) RangeFloat(field string, value, min, max float64) *ConfigValidator {
	if value < min || value > max {
		return cv.addf(field, "value %g is outside range [%g, %g]", value, min, max)
	}
	return cv
}

// OpenUnitInterval validates that a float field lies strictly between 0 and 1.
func (cv *ConfigValidator) OpenUnitInterval(field string, value float64) *ConfigValidator {
	if value <= 0 || value >= 1 {
		return cv.addf(field, "value %g must be in (0, 1)", value)
	}
	return cv
}

// NonNegativeDuration validates that a duration is not negative.
func (cv *ConfigValidator) NonNegativeDuration(field string, value time.Duration) *ConfigValidator {
	if value < 0 {
		return cv.addf(field, "duration %v must not be negative", value)
	}
	return cv
}

// URL validates that a string field is an absolute http(s) URL.
func (cv *ConfigValidator) URL(field, value string) *ConfigValidator {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return cv.addf(field, "%q is not an absolute http(s) URL", value)
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	return cv.addf(field, "value %q must be one of %v", value, allowed)
}

// When conditionally applies validations if the condition is true.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// HasErrors returns true if any validation errors occurred.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Errors returns all validation errors.
func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate returns all collected failures joined into one error, or nil.
func (cv *ConfigValidator) Validate() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(cv.errors...)
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
