package session

import (
	"strings"

	"dogwalker-be/pkg/logger"
)

// genericAuthError is what unmapped provider errors collapse into. The
// raw message is logged for diagnostics but never displayed.
const genericAuthError = "Authentication failed. Please try again."

// sanitizedErrors maps raw provider error strings to user-safe copy.
// Lookups try an exact match first, then a lowercase match.
var sanitizedErrors = map[string]string{
	"Invalid login credentials": "Invalid email or password",
	"invalid_credentials":       "Invalid email or password",
	"User not found":            "Invalid email or password",
	"invalid_grant":             "Invalid email or password",
	"Email not confirmed":       "Please confirm your email before logging in",
	"invalid_request_uri":       "Authentication error occurred",
	"User already registered":   "This email is already registered",
	"user_exists":               "This email is already registered",
	"Password should be at least 6 characters": "Password must be at least 6 characters",
	"password_too_short":                       "Password must be at least 6 characters",
	"Invalid JSON in session":                  "Session expired. Please log in again",
	"session_not_found":                        "Session expired. Please log in again",
}

// sanitizeAuthError translates a raw provider error message into a
// user-safe one. Raw provider strings never reach a caller.
func sanitizeAuthError(log *logger.Logger, message string) string {
	sanitized, ok := sanitizedErrors[message]
	if !ok {
		sanitized, ok = sanitizedErrors[strings.ToLower(message)]
	}
	if !ok {
		sanitized = genericAuthError
	}

	log.WithFields(map[string]interface{}{
		"original":  message,
		"sanitized": sanitized,
	}).Debug("Auth error sanitized")

	return sanitized
}
