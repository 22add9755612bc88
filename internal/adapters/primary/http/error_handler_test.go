package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
)

// Closed-set violations report 400 no matter which layer caught them, so a
// field-level failure and a domain sentinel look the same to the frontend.
func TestErrorHandler_BadInputAlwaysMapsTo400(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	fieldErrs := apperrors.NewValidationErrors()
	fieldErrs.Add("status", "Deve ser um de: Aberto, Em Andamento")

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"field-level validation", fieldErrs, "VALIDATION_ERROR"},
		{"invalid status sentinel", apperrors.ErrInvalidStatus, "INVALID_STATUS"},
		{"invalid priority sentinel", apperrors.ErrInvalidPriority, "INVALID_PRIORITY"},
		{"invalid team sentinel", apperrors.ErrInvalidTeam, "INVALID_TEAM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/os/1/status", nil)
			rec := httptest.NewRecorder()

			handler.Handle(rec, req, tt.err)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}
