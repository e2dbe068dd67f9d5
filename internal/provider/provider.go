package provider

import (
	"context"
	"time"
)

// Metadata is the user metadata blob attached to a provider identity.
// Role is the only field the session layer depends on; the rest mirror
// what the profile setup flow writes.
type Metadata struct {
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PhotoURL  string `json:"photoUrl,omitempty"`
}

// Identity is the provider's view of a user. Everything here is
// untrusted input until the session layer validates it.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UserMetadata Metadata  `json:"user_metadata"`
}

// Session is a credential pair plus its owning identity. ExpiresAt is a
// Unix timestamp; a session is only valid while it is strictly in the
// future.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         *Identity `json:"user"`
}

// SignUpResult is what a signup returns. Session is nil when the
// account requires email confirmation before it can be used.
type SignUpResult struct {
	User    *Identity
	Session *Session
}

// EventType classifies auth state change notifications.
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventSignedOut      EventType = "SIGNED_OUT"
)

// AuthEvent is pushed to subscribers whenever the provider's session
// state changes. Session is nil for sign-out events.
type AuthEvent struct {
	Type    EventType
	Session *Session
}

// Error carries the provider's raw error message. The message is
// untrusted and must pass through sanitization before reaching a user.
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

// AuthProvider is the identity provider surface the session coordinator
// consumes. It is injected at composition time so tests can substitute
// a fake without touching process-wide state.
type AuthProvider interface {
	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignUp registers a new account with the given metadata. The result
	// carries no session when confirmation is required.
	SignUp(ctx context.Context, email, password string, meta Metadata) (*SignUpResult, error)

	// SignOut revokes the session behind the access token.
	SignOut(ctx context.Context, accessToken string) error

	// RefreshSession exchanges a refresh token for a new session.
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)

	// GetUser fetches the identity behind an access token.
	GetUser(ctx context.Context, accessToken string) (*Identity, error)

	// UpdateUser merges metadata into the identity behind the token.
	UpdateUser(ctx context.Context, accessToken string, meta Metadata) (*Identity, error)

	// OnAuthStateChange registers a subscriber for session change
	// notifications and returns its unsubscribe function.
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}
