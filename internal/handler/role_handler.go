package handler

import (
	"encoding/json"
	"net/http"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/role"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

// RoleHandler exposes the device role preference.
type RoleHandler struct {
	selector *role.Selector
	log      *logger.Logger
}

func NewRoleHandler(selector *role.Selector, log *logger.Logger) *RoleHandler {
	return &RoleHandler{selector: selector, log: log}
}

type roleResponse struct {
	Role    string `json:"role,omitempty"`
	HasRole bool   `json:"has_role"`
	Loading bool   `json:"loading"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// GetRole handles GET /api/v1/role
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshot(), h.log)
}

// SetRole handles PUT /api/v1/role
func (h *RoleHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.log)
		return
	}

	if err := h.selector.SetRole(r.Context(), domain.Role(req.Role)); err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusOK, h.snapshot(), h.log)
}

// ClearRole handles DELETE /api/v1/role
func (h *RoleHandler) ClearRole(w http.ResponseWriter, r *http.Request) {
	if err := h.selector.ClearRole(r.Context()); err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusOK, h.snapshot(), h.log)
}

func (h *RoleHandler) snapshot() roleResponse {
	current, ok := h.selector.Role()
	resp := roleResponse{HasRole: ok, Loading: h.selector.IsLoading()}
	if ok {
		resp.Role = current.String()
	}
	return resp
}
