package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/corveoperu/cuervo-blanco-web/internal/auth/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/auth/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/auth/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponseDTO struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, sess, err := h.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, AuthResponseDTO{Token: sess.Token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponseDTO{Token: sess.Token, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
		return
	}
	if err := h.auth.Logout(r.Context(), token); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to log out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the account behind the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
		return
	}

	user, err := h.auth.GetUser(r.Context(), sess.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ListUsers handles GET /admin/users.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type UpdateRoleDTO struct {
	Role domain.Role `json:"role"`
}

func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user_id must be a UUID")
		return
	}

	var req UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.auth.UpdateRole(r.Context(), id, req.Role); err != nil {
		handleAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, repository.ErrDuplicateEmail):
		respondError(w, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", "user not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
