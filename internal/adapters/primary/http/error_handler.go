package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/infrastructure/logging"
)

// ErrorResponse is the standard JSON error response format.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors.
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, appErr.Err)
		h.writeErrorResponse(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusBadRequest, err)
		h.writeValidationErrorResponse(w, validationErrs)
		return
	}

	statusCode, response := h.mapDomainError(err)
	h.logError(r, statusCode, err)
	h.writeErrorResponse(w, statusCode, response)
}

// mapDomainError converts domain errors to HTTP status codes and responses.
// Error texts are in Portuguese because that is the language of the hospital
// staff using the frontend; codes stay machine-readable.
func (h *ErrorHandler) mapDomainError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Credenciais inválidas",
			Code:  "INVALID_CREDENTIALS",
		}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Autenticação necessária",
			Code:  "UNAUTHORIZED",
		}

	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Usuário não encontrado",
			Code:  "USER_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrOrderNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Ordem de serviço não encontrada",
			Code:  "ORDER_NOT_FOUND",
		}

	case errors.Is(err, apperrors.ErrUserExists):
		return http.StatusConflict, ErrorResponse{
			Error: "Já existe um usuário com este e-mail",
			Code:  "USER_EXISTS",
		}

	case errors.Is(err, apperrors.ErrInvalidTeam):
		return http.StatusBadRequest, ErrorResponse{
			Error: "Setor de destino inválido",
			Code:  "INVALID_TEAM",
		}
	case errors.Is(err, apperrors.ErrInvalidStatus):
		return http.StatusBadRequest, ErrorResponse{
			Error: "Status inválido",
			Code:  "INVALID_STATUS",
		}
	case errors.Is(err, apperrors.ErrInvalidPriority):
		return http.StatusBadRequest, ErrorResponse{
			Error: "Prioridade inválida",
			Code:  "INVALID_PRIORITY",
		}
	case errors.Is(err, apperrors.ErrRequesterRequired):
		return http.StatusBadRequest, ErrorResponse{
			Error: "Solicitante não informado",
			Code:  "REQUESTER_REQUIRED",
		}
	case errors.Is(err, apperrors.ErrDescriptionMissing),
		errors.Is(err, apperrors.ErrEmailRequired),
		errors.Is(err, apperrors.ErrEmailInvalid),
		errors.Is(err, apperrors.ErrPasswordRequired),
		errors.Is(err, apperrors.ErrPasswordTooWeak),
		errors.Is(err, apperrors.ErrNameRequired),
		errors.Is(err, apperrors.ErrInvalidUnit):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		}

	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Muitas requisições. Tente novamente em instantes.",
			Code:  "RATE_LIMITED",
		}

	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "Ocorreu um erro inesperado",
			Code:  "INTERNAL_ERROR",
		}
	}
}

func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	logAttrs := []any{
		"request_id", logging.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	switch {
	case statusCode >= 500:
		h.logger.Error("server error", logAttrs...)
	case statusCode >= 400:
		h.logger.Warn("client error", logAttrs...)
	default:
		h.logger.Info("request error", logAttrs...)
	}
}

func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// Field-level validation failures use 400 like every other closed-set
// violation, so callers see one status for bad input regardless of which
// layer caught it.
func (h *ErrorHandler) writeValidationErrorResponse(w http.ResponseWriter, errs *apperrors.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:  "Falha de validação",
		Code:   "VALIDATION_ERROR",
		Fields: errs.Errors,
	})
}
