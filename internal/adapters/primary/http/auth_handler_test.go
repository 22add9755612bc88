package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kronos-hms/os-tracker-backend/internal/auth"
	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/mocks"
	"github.com/kronos-hms/os-tracker-backend/internal/core/services"
)

func newAuthRouter(repo *mocks.MockUserRepository) (chi.Router, *auth.TokenManager) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm := auth.NewTokenManager("test-secret", time.Hour)
	handler := NewAuthHandler(
		services.NewAuthService(repo),
		tm,
		NewErrorHandler(logger),
		logger,
	)
	r := chi.NewRouter()
	r.Route("/usuarios", handler.RegisterRoutes)
	return r, tm
}

func TestHandleRegister(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	router, tm := newAuthRouter(repo)

	repo.On("GetByEmail", mock.Anything, "ana@hospital.local").Return(nil, apperrors.ErrUserNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(user *domain.User) bool {
		return user.Email == "ana@hospital.local" && user.Unit == "Farmácia"
	})).Return(int64(9), nil)

	body := `{"nome":"Ana Castro","email":"ana@hospital.local","senha":"senha-forte","setor":"Farmácia"}`
	req := httptest.NewRequest(http.MethodPost, "/usuarios/registrar", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(9), resp.Usuario.ID)
	assert.Equal(t, "Ana Castro", resp.Usuario.Nome)

	claims, err := tm.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "Farmácia", claims.Unit)
	repo.AssertExpectations(t)
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	router, _ := newAuthRouter(repo)

	repo.On("GetByEmail", mock.Anything, "ana@hospital.local").Return(&domain.User{ID: 9}, nil)

	body := `{"nome":"Ana Castro","email":"ana@hospital.local","senha":"senha-forte","setor":"Farmácia"}`
	req := httptest.NewRequest(http.MethodPost, "/usuarios/registrar", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "USER_EXISTS", resp.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleRegister_InvalidPayload(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	router, _ := newAuthRouter(repo)

	body := `{"nome":"","email":"nao-e-email","senha":"123","setor":"Farmácia"}`
	req := httptest.NewRequest(http.MethodPost, "/usuarios/registrar", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "nome")
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "senha")
}

func TestHandleLogin(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	router, _ := newAuthRouter(repo)

	hash, err := domain.HashPassword("senha-forte")
	require.NoError(t, err)
	repo.On("GetByEmail", mock.Anything, "ana@hospital.local").Return(&domain.User{
		ID:           9,
		Name:         "Ana Castro",
		Email:        "ana@hospital.local",
		PasswordHash: hash,
		Unit:         "Farmácia",
	}, nil)

	body := `{"email":"ana@hospital.local","senha":"senha-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/usuarios/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ana Castro", resp.Usuario.Nome)
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	router, _ := newAuthRouter(repo)

	hash, err := domain.HashPassword("senha-forte")
	require.NoError(t, err)
	repo.On("GetByEmail", mock.Anything, "ana@hospital.local").Return(&domain.User{
		ID:           9,
		Email:        "ana@hospital.local",
		PasswordHash: hash,
	}, nil)

	body := `{"email":"ana@hospital.local","senha":"senha-errada"}`
	req := httptest.NewRequest(http.MethodPost, "/usuarios/login", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Code)
}
