// Package validation provides the chainable input validator used by the
// generation services. Fields are validated independently so a single
// response can report every violated rule.
package validation

import (
	"fmt"
	"strings"

	"github.com/contentkit/openai-gateway/internal/models"
)

// Validator accumulates field violations across checks.
type Validator struct {
	errors map[string]string
}

// New creates an empty validator.
func New() *Validator {
	return &Validator{errors: make(map[string]string)}
}

// Required records an error when value is empty.
func (v *Validator) Required(value, field string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors[field] = fieldLabel(field) + " is required"
	}
	return v
}

// MinLength records an error when value is shorter than min bytes.
func (v *Validator) MinLength(value string, min int, field string) *Validator {
	if len(value) < min {
		v.errors[field] = fmt.Sprintf("%s must be at least %d characters", fieldLabel(field), min)
	}
	return v
}

// MaxLength records an error when value exceeds max bytes.
func (v *Validator) MaxLength(value string, max int, field string) *Validator {
	if len(value) > max {
		v.errors[field] = fmt.Sprintf("%s must not exceed %d characters", fieldLabel(field), max)
	}
	return v
}

// InEnum records an error when value is not one of allowed.
func (v *Validator) InEnum(value string, allowed []string, field string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.errors[field] = fmt.Sprintf("%s must be one of: %s", fieldLabel(field), strings.Join(allowed, ", "))
	return v
}

// Passes reports whether no check failed.
func (v *Validator) Passes() bool {
	return len(v.errors) == 0
}

// Errors returns the accumulated field->message map.
func (v *Validator) Errors() map[string]string {
	return v.errors
}

// Err returns nil when valid, otherwise a VALIDATION_ERROR carrying the
// field map.
func (v *Validator) Err() error {
	if v.Passes() {
		return nil
	}
	return models.NewValidationError(v.errors)
}

func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
