package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kronos-hms/os-tracker-backend/internal/adapters/primary/validation"
	"github.com/kronos-hms/os-tracker-backend/internal/auth"
	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// AuthHandler handles registration and login for hospital staff.
type AuthHandler struct {
	authService  ports.AuthService
	tokenManager *auth.TokenManager
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService ports.AuthService, tokenManager *auth.TokenManager, errorHandler *ErrorHandler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenManager: tokenManager,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterRoutes sets up the routing for the identity endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/registrar", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
}

// RegisterRequest is the JSON body for account creation.
type RegisterRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Setor string `json:"setor"`
}

// LoginRequest is the JSON body for login.
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// UserDTO is the JSON shape of an account, password hash excluded.
type UserDTO struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Setor string `json:"setor"`
}

// AuthResponse carries the token plus the account it authenticates.
type AuthResponse struct {
	Token   string  `json:"token"`
	Usuario UserDTO `json:"usuario"`
}

func toUserDTO(user *domain.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Nome:  user.Name,
		Email: user.Email,
		Setor: user.Unit,
	}
}

// HandleRegister handles POST /usuarios/registrar.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[RegisterRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), domain.UserRegistrationParams{
		Name:     req.Nome,
		Email:    req.Email,
		Password: req.Senha,
		Unit:     req.Setor,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.Name, user.Unit)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "unit", user.Unit)

	WriteCreated(w, AuthResponse{Token: token, Usuario: toUserDTO(user)})
}

// HandleLogin handles POST /usuarios/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[LoginRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Senha)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.Name, user.Unit)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)

	WriteSuccess(w, AuthResponse{Token: token, Usuario: toUserDTO(user)})
}
