package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/service"
	"dogwalker-be/internal/session"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

// WalkerHandler exposes the public walker directory.
type WalkerHandler struct {
	directory   service.DirectoryService
	coordinator *session.Coordinator
	log         *logger.Logger
}

func NewWalkerHandler(directory service.DirectoryService, coordinator *session.Coordinator, log *logger.Logger) *WalkerHandler {
	return &WalkerHandler{directory: directory, coordinator: coordinator, log: log}
}

// ListWalkers handles GET /api/v1/walkers
func (h *WalkerHandler) ListWalkers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseWalkerFilter(r)
	if err != nil {
		respondError(w, err, h.log)
		return
	}

	listings, err := h.directory.ListWalkers(r.Context(), filter)
	if err != nil {
		respondError(w, err, h.log)
		return
	}
	if listings == nil {
		listings = []domain.WalkerListing{}
	}

	respondJSON(w, http.StatusOK, listings, h.log)
}

// GetWalker handles GET /api/v1/walkers/{walkerId}
func (h *WalkerHandler) GetWalker(w http.ResponseWriter, r *http.Request) {
	walkerID := chi.URLParam(r, "walkerId")
	if walkerID == "" {
		respondError(w, apperrors.NewValidationError("Walker ID is required", nil), h.log)
		return
	}

	listing, err := h.directory.GetWalker(r.Context(), walkerID)
	if err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusOK, listing, h.log)
}

// PublishProfile handles POST /api/v1/walkers/publish. It projects the
// authenticated walker's profile into the public directory.
func (h *WalkerHandler) PublishProfile(w http.ResponseWriter, r *http.Request) {
	user := h.coordinator.CurrentUser()
	if user == nil {
		respondError(w, apperrors.NewAuthenticationError("No authenticated user"), h.log)
		return
	}

	listing, err := h.directory.PublishWalker(r.Context(), user)
	if err != nil {
		respondError(w, err, h.log)
		return
	}

	respondJSON(w, http.StatusCreated, listing, h.log)
}

func parseWalkerFilter(r *http.Request) (domain.WalkerFilter, error) {
	q := r.URL.Query()
	filter := domain.WalkerFilter{
		City:         q.Get("city"),
		VerifiedOnly: q.Get("verified") == "true",
	}

	if v := q.Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("Invalid min_rating", nil)
		}
		filter.MinRating = rating
	}
	if v := q.Get("max_rate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("Invalid max_rate", nil)
		}
		filter.MaxRate = rate
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, apperrors.NewValidationError("Invalid limit", nil)
		}
		filter.Limit = limit
	}

	return filter, nil
}
