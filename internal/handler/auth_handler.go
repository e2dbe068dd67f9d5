package handler

import (
	"encoding/json"
	"net/http"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/role"
	"dogwalker-be/internal/session"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

// AuthHandler exposes the session lifecycle over HTTP.
type AuthHandler struct {
	coordinator *session.Coordinator
	selector    *role.Selector
	log         *logger.Logger
}

func NewAuthHandler(coordinator *session.Coordinator, selector *role.Selector, log *logger.Logger) *AuthHandler {
	return &AuthHandler{coordinator: coordinator, selector: selector, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// sessionResponse is the auth state snapshot the client polls.
type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
	User          *domain.User `json:"user,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.log)
		return
	}

	if err := h.coordinator.Login(r.Context(), req.Email, req.Password); err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusOK, h.sessionSnapshot(), h.log)
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.log)
		return
	}

	if err := h.coordinator.Signup(r.Context(), req.Email, req.Password, domain.Role(req.Role)); err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusCreated, h.sessionSnapshot(), h.log)
}

// Logout handles POST /api/v1/auth/logout. The role preference is
// reset along with the session so a returning user re-selects a side;
// local state is cleared even when the provider sign-out fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	logoutErr := h.coordinator.Logout(r.Context())

	if err := h.selector.ClearRole(r.Context()); err != nil {
		h.log.WithError(err).Error("Failed to clear role preference on logout")
	}

	if logoutErr != nil {
		respondError(w, logoutErr, h.log)
		return
	}

	respondJSON(w, http.StatusOK, h.sessionSnapshot(), h.log)
}

// GetSession handles GET /api/v1/auth/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sessionSnapshot(), h.log)
}

// ClearError handles DELETE /api/v1/auth/error
func (h *AuthHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.coordinator.ClearError()
	respondJSON(w, http.StatusOK, h.sessionSnapshot(), h.log)
}

// UpdateUser handles PATCH /api/v1/auth/user
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var update domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.log)
		return
	}

	if err := h.coordinator.UpdateUser(r.Context(), update); err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusOK, h.coordinator.CurrentUser(), h.log)
}

func (h *AuthHandler) sessionSnapshot() sessionResponse {
	return sessionResponse{
		Authenticated: h.coordinator.IsAuthenticated(),
		Loading:       h.coordinator.IsLoading(),
		User:          h.coordinator.CurrentUser(),
		Error:         h.coordinator.LastError(),
	}
}
