package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// respondError coerces any error into the standard error envelope.
func respondError(w http.ResponseWriter, err error, log *logger.Logger) {
	appErr := errors.AsAppError(err)
	if appErr.Internal != nil {
		log.WithError(appErr.Internal).Error(appErr.Message)
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	respondJSON(w, appErr.StatusCode, response, log)
}
