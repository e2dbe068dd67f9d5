package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/middleware"
	"dogwalker-be/internal/service"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

// DogHandler manages the authenticated owner's dogs.
type DogHandler struct {
	dogs service.DogService
	log  *logger.Logger
}

func NewDogHandler(dogs service.DogService, log *logger.Logger) *DogHandler {
	return &DogHandler{dogs: dogs, log: log}
}

// ListDogs handles GET /api/v1/dogs
func (h *DogHandler) ListDogs(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.NewAuthenticationError("Authentication required"), h.log)
		return
	}

	dogs, err := h.dogs.ListDogs(r.Context(), user.ID)
	if err != nil {
		respondError(w, err, h.log)
		return
	}
	if dogs == nil {
		dogs = []domain.Dog{}
	}

	respondJSON(w, http.StatusOK, dogs, h.log)
}

// GetDog handles GET /api/v1/dogs/{dogId}
func (h *DogHandler) GetDog(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.NewAuthenticationError("Authentication required"), h.log)
		return
	}

	dogID := chi.URLParam(r, "dogId")
	if dogID == "" {
		respondError(w, apperrors.NewValidationError("Dog ID is required", nil), h.log)
		return
	}

	dog, err := h.dogs.GetDog(r.Context(), dogID, user.ID)
	if err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusOK, dog, h.log)
}

// AddDog handles POST /api/v1/dogs
func (h *DogHandler) AddDog(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.NewAuthenticationError("Authentication required"), h.log)
		return
	}

	var dog domain.Dog
	if err := json.NewDecoder(r.Body).Decode(&dog); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.log)
		return
	}

	created, err := h.dogs.AddDog(r.Context(), user.ID, dog)
	if err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusCreated, created, h.log)
}

// RemoveDog handles DELETE /api/v1/dogs/{dogId}
func (h *DogHandler) RemoveDog(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.NewAuthenticationError("Authentication required"), h.log)
		return
	}

	dogID := chi.URLParam(r, "dogId")
	if dogID == "" {
		respondError(w, apperrors.NewValidationError("Dog ID is required", nil), h.log)
		return
	}

	if err := h.dogs.RemoveDog(r.Context(), dogID, user.ID); err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"}, h.log)
}
