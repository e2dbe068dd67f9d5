package store

import "dogwalker-be/internal/domain"

// Logical key names for the session namespace. The secret-tier names
// keep the "secure_" prefix so an audit of the backing store can tell
// the tiers apart at a glance.
const (
	keyAuthToken    = "session:secure_auth_token"
	keyRefreshToken = "session:secure_refresh_token"

	keyUserRole            = "session:user_role"
	keyUserData            = "session:user_data"
	keyOnboardingCompleted = "session:onboarding_completed"
	keySetupCompleted      = "session:setup_completed"
)

func roleKey(base string, role domain.Role) string {
	return base + "_" + role.String()
}
