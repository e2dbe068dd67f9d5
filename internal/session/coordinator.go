package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/provider"
	"dogwalker-be/internal/store"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

const (
	maxLoginAttempts       = 5
	loginAttemptWindow     = 60 * time.Second
	defaultRefreshInterval = 5 * time.Minute

	rateLimitMessage = "Too many login attempts. Please try again later."
)

// Coordinator is the single authority for "who is logged in". It owns
// the in-memory session, talks to the identity provider, applies
// validation and rate-limiting policy, and synchronizes the session
// store on every transition.
//
// Every path into the authenticated state, explicit login, signup,
// background refresh, and provider push events, funnels through the
// same validate-and-persist step. A session generation counter makes
// completions from before a logout land dead: a stale refresh can no
// longer resurrect cleared state.
type Coordinator struct {
	provider provider.AuthProvider
	store    *store.Store
	log      *logger.Logger

	refreshInterval time.Duration
	now             func() time.Time

	mu         sync.Mutex
	user       *domain.User
	loading    bool
	lastErr    string
	generation uint64
	limiter    loginRateLimiter
	started    bool

	stopCh      chan struct{}
	unsubscribe func()
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRefreshInterval overrides the background token refresh interval.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.refreshInterval = d }
}

// WithClock injects a clock. Used by tests to drive the rate limiter
// and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a coordinator. The provider is injected so tests can
// substitute a fake without touching process-wide state.
func New(p provider.AuthProvider, s *store.Store, log *logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider:        p,
		store:           s,
		log:             log,
		refreshInterval: defaultRefreshInterval,
		now:             time.Now,
		loading:         true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.limiter = loginRateLimiter{
		max:    maxLoginAttempts,
		window: loginAttemptWindow,
		now:    func() time.Time { return c.now() },
	}
	return c
}

// Start restores any persisted session, subscribes to provider push
// notifications, and begins the background refresh loop.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	c.restoreSession(ctx)

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()

	c.unsubscribe = c.provider.OnAuthStateChange(func(ev provider.AuthEvent) {
		evCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		c.HandleAuthStateChange(evCtx, ev.Session)
	})

	go c.refreshLoop()
}

// Stop halts the refresh loop and unsubscribes from push notifications.
// In-flight provider calls are not aborted.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	close(c.stopCh)
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// CurrentUser returns the authenticated profile, or nil.
func (c *Coordinator) CurrentUser() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// IsAuthenticated reports whether a user profile is held. True iff
// CurrentUser is non-nil.
func (c *Coordinator) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user != nil
}

// IsLoading reports whether the initial session restore is still
// running.
func (c *Coordinator) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the last user-displayable error, or "".
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError resets the displayable error.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

// Login authenticates with email and password. Local guardrails (rate
// limit, blank fields, email shape, password length) reject before any
// provider call; provider errors are sanitized before surfacing.
func (c *Coordinator) Login(ctx context.Context, email, password string) error {
	c.mu.Lock()
	if !c.limiter.allow() {
		c.lastErr = rateLimitMessage
		c.mu.Unlock()
		return apperrors.NewRateLimitError(rateLimitMessage)
	}

	var msg string
	switch {
	case isBlank(email) || isBlank(password):
		msg = "Email and password are required"
	case !isValidEmail(email):
		msg = "Invalid email format"
	case !isValidPassword(password):
		msg = "Password must be at least 6 characters"
	}
	if msg != "" {
		c.lastErr = msg
		c.mu.Unlock()
		return apperrors.NewValidationError(msg, nil)
	}
	gen := c.generation
	c.mu.Unlock()

	c.log.WithField("email", email).Debug("Login attempt")

	sess, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		sanitized := c.sanitizeProviderError(err)
		c.setError(sanitized)
		return apperrors.NewAuthenticationError(sanitized)
	}
	if sess == nil || sess.User == nil {
		const invalidResponse = "Invalid login response from server"
		c.setError(invalidResponse)
		return apperrors.NewAuthenticationError(invalidResponse)
	}

	if !c.handleSession(ctx, gen, sess, true) {
		return apperrors.NewAuthenticationError(c.LastError())
	}

	c.log.Info("User logged in")
	return nil
}

// Signup registers a new account. When the provider returns an active
// session the user is logged in immediately; when the account requires
// email confirmation the coordinator stays unauthenticated without
// treating it as an error.
func (c *Coordinator) Signup(ctx context.Context, email, password string, role domain.Role) error {
	var msg string
	switch {
	case isBlank(email) || isBlank(password) || isBlank(string(role)):
		msg = "Email, password, and role are required"
	case !isValidEmail(email):
		msg = "Invalid email format"
	case !isValidPassword(password):
		msg = "Password must be at least 6 characters"
	case !role.Valid():
		msg = fmt.Sprintf("Invalid role: %s", role)
	}
	if msg != "" {
		c.setError(msg)
		return apperrors.NewValidationError(msg, nil)
	}
	gen := c.currentGeneration()

	c.log.WithFields(map[string]interface{}{
		"email": email,
		"role":  role.String(),
	}).Debug("Signup attempt")

	result, err := c.provider.SignUp(ctx, email, password, provider.Metadata{Role: role.String()})
	if err != nil {
		sanitized := c.sanitizeProviderError(err)
		c.setError(sanitized)
		return apperrors.NewAuthenticationError(sanitized)
	}
	if result == nil || result.User == nil {
		const invalidResponse = "Invalid signup response from server"
		c.setError(invalidResponse)
		return apperrors.NewAuthenticationError(invalidResponse)
	}

	if result.Session == nil {
		c.log.Info("User signed up, email confirmation required")
		return nil
	}

	if !c.handleSession(ctx, gen, result.Session, true) {
		return apperrors.NewAuthenticationError(c.LastError())
	}

	c.log.Info("User signed up and logged in")
	return nil
}

// Logout signs out with the provider and unconditionally clears all
// local session artifacts, even when the provider call fails. A failed
// sign-out still surfaces as an error, but local state is never left
// stale-authenticated.
func (c *Coordinator) Logout(ctx context.Context) error {
	c.log.Debug("Logout initiated")

	token, _ := c.store.GetAuthToken(ctx)
	signOutErr := c.provider.SignOut(ctx, token)

	c.mu.Lock()
	c.generation++ // in-flight refresh completions are now stale
	c.user = nil
	c.lastErr = ""
	c.mu.Unlock()

	clearErr := c.store.ClearAllAuthData(ctx)

	if signOutErr != nil {
		const logoutFailed = "Logout failed"
		c.setError(logoutFailed)
		return apperrors.NewExternalError(logoutFailed, signOutErr)
	}
	if clearErr != nil {
		return apperrors.NewInternalError("Failed to clear session data", clearErr)
	}

	c.log.Info("User logged out")
	return nil
}

// UpdateUser merges a partial update into the profile, preserving the
// role discriminant. A role change is pushed to the provider first; if
// that fails the whole update aborts with no partial local mutation.
func (c *Coordinator) UpdateUser(ctx context.Context, update domain.UserUpdate) error {
	c.mu.Lock()
	current := c.user
	c.mu.Unlock()
	if current == nil {
		const noUser = "No authenticated user"
		c.setError(noUser)
		return apperrors.NewAuthenticationError(noUser)
	}

	merged, err := current.Apply(update)
	if err != nil {
		c.setError(err.Error())
		return apperrors.NewValidationError(err.Error(), nil)
	}

	if update.Role != nil && *update.Role != current.Role {
		token, ok := c.store.GetAuthToken(ctx)
		if !ok {
			const noToken = "No valid session token"
			c.setError(noToken)
			return apperrors.NewAuthenticationError(noToken)
		}
		if _, err := c.provider.UpdateUser(ctx, token, provider.Metadata{Role: update.Role.String()}); err != nil {
			const roleUpdateFailed = "Failed to update user role"
			c.log.WithError(err).Error("Provider role update failed, aborting profile update")
			c.setError(roleUpdateFailed)
			return apperrors.NewExternalError(roleUpdateFailed, err)
		}
		c.log.WithField("new_role", update.Role.String()).Info("User role updated")
	}

	if err := c.store.SaveUserData(ctx, merged); err != nil {
		const saveFailed = "Failed to save profile"
		c.setError(saveFailed)
		return apperrors.NewInternalError(saveFailed, err)
	}

	c.mu.Lock()
	if c.user != nil && c.user.ID == merged.ID {
		c.user = merged
		c.lastErr = ""
	}
	c.mu.Unlock()

	c.log.WithField("user_id", merged.ID).Info("User profile updated")
	return nil
}

// HandleAuthStateChange funnels an asynchronous session notification
// (provider push, test harness) through the same validate-and-persist
// path as an explicit login. Malformed or expired sessions land in the
// unauthenticated state with both storage tiers cleared, silently.
func (c *Coordinator) HandleAuthStateChange(ctx context.Context, sess *provider.Session) {
	c.handleSession(ctx, c.currentGeneration(), sess, false)
}

// --- internals -------------------------------------------------------

func (c *Coordinator) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Coordinator) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func (c *Coordinator) sanitizeProviderError(err error) string {
	var provErr *provider.Error
	if errors.As(err, &provErr) {
		return sanitizeAuthError(c.log, provErr.Message)
	}
	c.log.WithError(err).Error("Provider call failed")
	return genericAuthError
}

// handleSession is the single validate-and-persist step behind every
// session transition. gen is the generation captured before the
// triggering provider call; a mismatch means a logout happened in the
// meantime and the result is discarded. explicit marks user-initiated
// flows, which surface a displayable error on failure; silent flows
// (background refresh, push events) only log.
func (c *Coordinator) handleSession(ctx context.Context, gen uint64, sess *provider.Session, explicit bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug("Stale session result discarded")
		return false
	}

	if !isValidSession(sess, c.now()) {
		c.clearArtifactsLocked(ctx)
		c.user = nil
		if explicit {
			c.lastErr = genericAuthError
		}
		return false
	}

	role, ok := domain.ParseRole(sess.User.UserMetadata.Role)
	if !ok {
		c.log.Error("Invalid or missing user role in session metadata")
		c.clearArtifactsLocked(ctx)
		c.user = nil
		if explicit {
			c.lastErr = "Invalid user role. Please contact support."
		}
		return false
	}

	user, err := domain.NewUserFromIdentity(
		sess.User.ID,
		sess.User.Email,
		role.String(),
		sess.User.CreatedAt,
		domain.IdentityMetadata{
			FirstName: sess.User.UserMetadata.FirstName,
			LastName:  sess.User.UserMetadata.LastName,
			Phone:     sess.User.UserMetadata.Phone,
			PhotoURL:  sess.User.UserMetadata.PhotoURL,
		},
	)
	if err != nil {
		c.log.WithError(err).Error("Failed to build user from session identity")
		c.clearArtifactsLocked(ctx)
		c.user = nil
		if explicit {
			c.lastErr = genericAuthError
		}
		return false
	}

	// Credential writes are fail-safe; the profile snapshot write is
	// correctness-critical and aborts the transition when it fails.
	c.store.SaveAuthToken(ctx, sess.AccessToken)
	if sess.RefreshToken != "" {
		c.store.SaveRefreshToken(ctx, sess.RefreshToken)
	}
	if err := c.store.SaveUserData(ctx, user); err != nil {
		c.log.WithError(err).Error("Failed to persist profile snapshot")
		c.clearArtifactsLocked(ctx)
		c.user = nil
		if explicit {
			c.lastErr = genericAuthError
		}
		return false
	}

	c.user = user
	c.lastErr = ""
	c.log.WithField("user_id", user.ID).Info("User authenticated")
	return true
}

func (c *Coordinator) clearArtifactsLocked(ctx context.Context) {
	c.store.RemoveAuthToken(ctx)
	c.store.RemoveRefreshToken(ctx)
	if err := c.store.RemoveUserData(ctx); err != nil {
		c.log.WithError(err).Error("Failed to remove profile snapshot")
	}
}

// restoreSession rebuilds the session on startup: an unexpired stored
// access token is validated against the provider, otherwise the stored
// refresh token is exchanged. No session and any retrieval error both
// land in the unauthenticated state without a displayable error.
func (c *Coordinator) restoreSession(ctx context.Context) {
	gen := c.currentGeneration()

	if token, ok := c.store.GetAuthToken(ctx); ok {
		if exp := tokenExpiry(token); exp.After(c.now()) {
			identity, err := c.provider.GetUser(ctx, token)
			if err == nil {
				refresh, _ := c.store.GetRefreshToken(ctx)
				c.handleSession(ctx, gen, &provider.Session{
					AccessToken:  token,
					RefreshToken: refresh,
					ExpiresAt:    exp.Unix(),
					User:         identity,
				}, false)
				return
			}
			c.log.WithError(err).Warn("Stored session rejected by provider")
		}
	}

	if refresh, ok := c.store.GetRefreshToken(ctx); ok {
		sess, err := c.provider.RefreshSession(ctx, refresh)
		if err == nil {
			c.handleSession(ctx, gen, sess, false)
			return
		}
		c.log.WithError(err).Warn("Failed to refresh stored session")
	}

	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
}

func (c *Coordinator) refreshLoop() {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.refreshOnce()
		}
	}
}

// refreshOnce silently renews the token. Failure is logged but never
// forces a sign-out: the existing token stays valid until its own
// expiry.
func (c *Coordinator) refreshOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c.mu.Lock()
	authenticated := c.user != nil
	gen := c.generation
	c.mu.Unlock()
	if !authenticated {
		return
	}

	refresh, ok := c.store.GetRefreshToken(ctx)
	if !ok {
		return
	}

	sess, err := c.provider.RefreshSession(ctx, refresh)
	if err != nil {
		c.log.WithError(err).Warn("Token refresh failed")
		return
	}
	c.handleSession(ctx, gen, sess, false)
}

// tokenExpiry reads the exp claim without verifying the signature. The
// provider remains the authority; this only decides whether a stored
// token is worth presenting at all.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
