package session

import (
	"regexp"
	"strings"
	"time"

	"dogwalker-be/internal/provider"
)

const minPasswordLength = 6

// Basic local@domain.tld shape check. Real validation is the provider's
// job; this only stops obviously broken input before a network call.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func isValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func isValidPassword(password string) bool {
	return len(password) >= minPasswordLength
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// isValidSession reports whether a provider session is usable: present,
// carrying an identity, and with an expiry strictly in the future.
func isValidSession(sess *provider.Session, now time.Time) bool {
	if sess == nil || sess.User == nil || sess.AccessToken == "" {
		return false
	}
	return sess.ExpiresAt > now.Unix()
}
