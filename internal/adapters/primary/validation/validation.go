package validation

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
)

// Validator accumulates field-level validation errors for a request body.
// Messages are in Portuguese because they go straight to the frontend.
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors.
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Required validates that a string is not empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "Campo obrigatório")
	}
	return v
}

// OneOf validates value is one of the allowed values. Empty values pass; they
// are the Required rule's business.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}

	for _, a := range allowed {
		if value == a {
			return v
		}
	}

	v.errors.Add(field, "Deve ser um de: "+strings.Join(allowed, ", "))
	return v
}

// DecodeAndValidate decodes a JSON request body.
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Corpo da requisição inválido")
	}

	return &req, nil
}
