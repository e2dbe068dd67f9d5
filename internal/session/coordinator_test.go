package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/provider"
	"dogwalker-be/internal/store"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/kv"
	"dogwalker-be/pkg/logger"
)

const testCipherKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0).UTC()}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// fakeProvider substitutes the identity provider. Unset funcs fail the
// call with a provider error so tests only wire what they exercise.
type fakeProvider struct {
	mu sync.Mutex

	signInFn     func(ctx context.Context, email, password string) (*provider.Session, error)
	signUpFn     func(ctx context.Context, email, password string, meta provider.Metadata) (*provider.SignUpResult, error)
	signOutFn    func(ctx context.Context, accessToken string) error
	refreshFn    func(ctx context.Context, refreshToken string) (*provider.Session, error)
	getUserFn    func(ctx context.Context, accessToken string) (*provider.Identity, error)
	updateUserFn func(ctx context.Context, accessToken string, meta provider.Metadata) (*provider.Identity, error)

	signInCalls     int
	signUpCalls     int
	signOutCalls    int
	refreshCalls    int
	getUserCalls    int
	updateUserCalls int
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*provider.Session, error) {
	f.mu.Lock()
	f.signInCalls++
	fn := f.signInFn
	f.mu.Unlock()
	if fn == nil {
		return nil, &provider.Error{Message: "not wired", StatusCode: 500}
	}
	return fn(ctx, email, password)
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password string, meta provider.Metadata) (*provider.SignUpResult, error) {
	f.mu.Lock()
	f.signUpCalls++
	fn := f.signUpFn
	f.mu.Unlock()
	if fn == nil {
		return nil, &provider.Error{Message: "not wired", StatusCode: 500}
	}
	return fn(ctx, email, password, meta)
}

func (f *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	f.signOutCalls++
	fn := f.signOutFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, accessToken)
}

func (f *fakeProvider) RefreshSession(ctx context.Context, refreshToken string) (*provider.Session, error) {
	f.mu.Lock()
	f.refreshCalls++
	fn := f.refreshFn
	f.mu.Unlock()
	if fn == nil {
		return nil, &provider.Error{Message: "not wired", StatusCode: 500}
	}
	return fn(ctx, refreshToken)
}

func (f *fakeProvider) GetUser(ctx context.Context, accessToken string) (*provider.Identity, error) {
	f.mu.Lock()
	f.getUserCalls++
	fn := f.getUserFn
	f.mu.Unlock()
	if fn == nil {
		return nil, &provider.Error{Message: "not wired", StatusCode: 500}
	}
	return fn(ctx, accessToken)
}

func (f *fakeProvider) UpdateUser(ctx context.Context, accessToken string, meta provider.Metadata) (*provider.Identity, error) {
	f.mu.Lock()
	f.updateUserCalls++
	fn := f.updateUserFn
	f.mu.Unlock()
	if fn == nil {
		return nil, &provider.Error{Message: "not wired", StatusCode: 500}
	}
	return fn(ctx, accessToken, meta)
}

func (f *fakeProvider) OnAuthStateChange(fn func(provider.AuthEvent)) func() {
	return func() {}
}

func (f *fakeProvider) calls() (signIn, refresh, updateUser int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signInCalls, f.refreshCalls, f.updateUserCalls
}

func setupCoordinator(t *testing.T, p provider.AuthProvider) (*Coordinator, *store.Store, *fakeClock, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	kvc, err := kv.NewClient("redis://"+mr.Addr(), "test", logger.NewNop().Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvc.Close() })

	s, err := store.New(kvc, testCipherKey, logger.NewNop())
	require.NoError(t, err)

	clock := newFakeClock()
	c := New(p, s, logger.NewNop(), WithClock(clock.Now))
	return c, s, clock, mr
}

func validSession(clock *fakeClock, role string) *provider.Session {
	return &provider.Session{
		AccessToken:  "access-abc",
		TokenType:    "bearer",
		RefreshToken: "refresh-def",
		ExpiresAt:    clock.Now().Add(time.Hour).Unix(),
		User: &provider.Identity{
			ID:        "u-1",
			Email:     "ada@example.com",
			CreatedAt: clock.Now(),
			UserMetadata: provider.Metadata{
				Role:      role,
				FirstName: "Ada",
			},
		},
	}
}

func TestLogin_ValidationRejectsBeforeProviderCall(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"blank email", "", "secret123", "Email and password are required"},
		{"blank password", "ada@example.com", "  ", "Email and password are required"},
		{"bad email shape", "not-an-email", "secret123", "Invalid email format"},
		{"short password", "ada@example.com", "12345", "Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{}
			c, _, _, _ := setupCoordinator(t, p)

			err := c.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)

			appErr := apperrors.AsAppError(err)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, tt.wantMsg, c.LastError())

			signIn, _, _ := p.calls()
			assert.Zero(t, signIn, "provider must not be called on local rejection")
		})
	}
}

func TestLogin_RateLimitFixedWindow(t *testing.T) {
	p := &fakeProvider{
		signInFn: func(ctx context.Context, email, password string) (*provider.Session, error) {
			return nil, &provider.Error{Message: "Invalid login credentials", StatusCode: 400}
		},
	}
	c, _, clock, _ := setupCoordinator(t, p)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := c.Login(ctx, "ada@example.com", "secret123")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeAuthentication, apperrors.AsAppError(err).Type)
		clock.Advance(time.Second)
	}

	err := c.Login(ctx, "ada@example.com", "secret123")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrorTypeRateLimit, appErr.Type)
	assert.Equal(t, rateLimitMessage, appErr.Message)

	signIn, _, _ := p.calls()
	assert.Equal(t, 5, signIn, "rate-limited attempt must not reach the provider")

	// The window is anchored at the first attempt of the burst, so 61s
	// after that first attempt the limiter admits again.
	clock.Advance(57 * time.Second)
	err = c.Login(ctx, "ada@example.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeAuthentication, apperrors.AsAppError(err).Type)
	signIn, _, _ = p.calls()
	assert.Equal(t, 6, signIn)
}

func TestLogin_SuccessPersistsSession(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, mr := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	assert.True(t, c.IsAuthenticated())
	assert.Empty(t, c.LastError())

	user := c.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, domain.RoleOwner, user.Role)
	assert.Equal(t, "Ada", user.FirstName)
	assert.True(t, user.IsOwner())

	token, ok := s.GetAuthToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "access-abc", token)
	refresh, ok := s.GetRefreshToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "refresh-def", refresh)

	// Sealed at rest: the raw stored value is not the plaintext token.
	raw, err := mr.Get("staging:session:secure_auth_token")
	require.NoError(t, err)
	assert.NotContains(t, raw, "access-abc")

	persisted, ok := s.GetUserData(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", persisted.ID)
}

func TestLogin_SanitizesProviderError(t *testing.T) {
	p := &fakeProvider{
		signInFn: func(ctx context.Context, email, password string) (*provider.Session, error) {
			return nil, &provider.Error{Message: "Invalid login credentials", StatusCode: 400}
		},
	}
	c, _, _, _ := setupCoordinator(t, p)

	err := c.Login(context.Background(), "ada@example.com", "secret123")
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrorTypeAuthentication, appErr.Type)
	assert.Equal(t, "Invalid email or password", appErr.Message)
	assert.Equal(t, "Invalid email or password", c.LastError())
	assert.NotContains(t, err.Error(), "Invalid login credentials")
	assert.False(t, c.IsAuthenticated())
}

func TestLogin_InvalidRoleInSessionRejected(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "admin"), nil
	}

	ctx := context.Background()
	err := c.Login(ctx, "ada@example.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, "Invalid user role. Please contact support.", c.LastError())
	assert.False(t, c.IsAuthenticated())

	_, ok := s.GetUserData(ctx)
	assert.False(t, ok)
}

func TestHandleAuthStateChange_ExpiredSessionClearsState(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "walker"), nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))
	require.True(t, c.IsAuthenticated())

	expired := validSession(clock, "walker")
	expired.ExpiresAt = clock.Now().Add(-time.Minute).Unix()
	c.HandleAuthStateChange(ctx, expired)

	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, c.LastError(), "silent path must not surface a displayable error")

	_, ok := s.GetAuthToken(ctx)
	assert.False(t, ok)
	_, ok = s.GetRefreshToken(ctx)
	assert.False(t, ok)
	_, ok = s.GetUserData(ctx)
	assert.False(t, ok)
}

func TestSignup_ConfirmationRequired(t *testing.T) {
	p := &fakeProvider{
		signUpFn: func(ctx context.Context, email, password string, meta provider.Metadata) (*provider.SignUpResult, error) {
			return &provider.SignUpResult{
				User: &provider.Identity{ID: "u-9", Email: email, UserMetadata: meta},
			}, nil
		},
	}
	c, _, _, _ := setupCoordinator(t, p)

	err := c.Signup(context.Background(), "new@example.com", "secret123", domain.RoleOwner)
	require.NoError(t, err)
	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, c.LastError())
}

func TestSignup_AutoConfirmLogsIn(t *testing.T) {
	p := &fakeProvider{}
	c, _, clock, _ := setupCoordinator(t, p)
	p.signUpFn = func(ctx context.Context, email, password string, meta provider.Metadata) (*provider.SignUpResult, error) {
		sess := validSession(clock, meta.Role)
		return &provider.SignUpResult{User: sess.User, Session: sess}, nil
	}

	require.NoError(t, c.Signup(context.Background(), "new@example.com", "secret123", domain.RoleWalker))
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, domain.RoleWalker, c.CurrentUser().Role)
}

func TestSignup_InvalidRoleRejectedLocally(t *testing.T) {
	p := &fakeProvider{}
	c, _, _, _ := setupCoordinator(t, p)

	err := c.Signup(context.Background(), "new@example.com", "secret123", domain.Role("admin"))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "Invalid role: admin", appErr.Message)
	assert.Zero(t, p.signUpCalls)
}

func TestLogout_ClearsStateEvenWhenProviderFails(t *testing.T) {
	p := &fakeProvider{
		signOutFn: func(ctx context.Context, accessToken string) error {
			return &provider.Error{Message: "network down", StatusCode: 503}
		},
	}
	c, s, clock, mr := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	err := c.Logout(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.AsAppError(err).Type)

	assert.False(t, c.IsAuthenticated())
	assert.Nil(t, c.CurrentUser())
	_, ok := s.GetAuthToken(ctx)
	assert.False(t, ok)
	assert.Empty(t, mr.Keys())
}

func TestLogout_DiscardsInFlightRefresh(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	// A refresh captures the generation before its provider call.
	staleGen := c.currentGeneration()
	require.NoError(t, c.Logout(ctx))

	// The refresh completes after logout; its result must land dead.
	refreshed := validSession(clock, "owner")
	refreshed.AccessToken = "access-resurrected"
	applied := c.handleSession(ctx, staleGen, refreshed, false)

	assert.False(t, applied)
	assert.False(t, c.IsAuthenticated())
	_, ok := s.GetAuthToken(ctx)
	assert.False(t, ok)
}

func TestUpdateUser_MergesFields(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	first := "Grace"
	phone := "+66912345678"
	require.NoError(t, c.UpdateUser(ctx, domain.UserUpdate{FirstName: &first, Phone: &phone}))

	user := c.CurrentUser()
	assert.Equal(t, "Grace", user.FirstName)
	assert.Equal(t, "+66912345678", user.Phone)
	assert.Equal(t, domain.RoleOwner, user.Role)

	persisted, ok := s.GetUserData(ctx)
	require.True(t, ok)
	assert.Equal(t, "Grace", persisted.FirstName)
}

func TestUpdateUser_RoleChangeAbortsOnProviderFailure(t *testing.T) {
	p := &fakeProvider{
		updateUserFn: func(ctx context.Context, accessToken string, meta provider.Metadata) (*provider.Identity, error) {
			return nil, &provider.Error{Message: "metadata update failed", StatusCode: 500}
		},
	}
	c, s, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	walker := domain.RoleWalker
	err := c.UpdateUser(ctx, domain.UserUpdate{Role: &walker})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.AsAppError(err).Type)

	// Nothing changed, locally or in the persisted snapshot.
	assert.Equal(t, domain.RoleOwner, c.CurrentUser().Role)
	persisted, ok := s.GetUserData(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.RoleOwner, persisted.Role)
}

func TestUpdateUser_RoleChangePushesMetadataFirst(t *testing.T) {
	p := &fakeProvider{}
	c, _, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}
	var pushedRole string
	p.updateUserFn = func(ctx context.Context, accessToken string, meta provider.Metadata) (*provider.Identity, error) {
		pushedRole = meta.Role
		return &provider.Identity{ID: "u-1", Email: "ada@example.com", UserMetadata: meta}, nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	walker := domain.RoleWalker
	require.NoError(t, c.UpdateUser(ctx, domain.UserUpdate{Role: &walker}))

	assert.Equal(t, "walker", pushedRole)
	user := c.CurrentUser()
	assert.Equal(t, domain.RoleWalker, user.Role)
	assert.True(t, user.IsWalker(), "side switch rebuilds the variant")
}

// signedToken builds a token whose exp claim the restore path can
// introspect. The signing key is irrelevant; the provider stays the
// authority on validity.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("signing-key"))
	require.NoError(t, err)
	return signed
}

func TestStart_RestoresSessionFromStoredToken(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	ctx := context.Background()

	s.SaveAuthToken(ctx, signedToken(t, clock.Now().Add(time.Hour)))
	s.SaveRefreshToken(ctx, "refresh-def")
	p.getUserFn = func(ctx context.Context, accessToken string) (*provider.Identity, error) {
		return &provider.Identity{
			ID:           "u-1",
			Email:        "ada@example.com",
			UserMetadata: provider.Metadata{Role: "walker"},
		}, nil
	}

	require.True(t, c.IsLoading())
	c.Start(ctx)
	t.Cleanup(c.Stop)

	assert.False(t, c.IsLoading())
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, domain.RoleWalker, c.CurrentUser().Role)
	assert.Equal(t, 1, p.getUserCalls)

	// The unexpired token was accepted directly; no refresh grant.
	_, refresh, _ := p.calls()
	assert.Zero(t, refresh)
}

func TestStart_ProviderRejectionFallsBackToRefreshGrant(t *testing.T) {
	p := &fakeProvider{
		getUserFn: func(ctx context.Context, accessToken string) (*provider.Identity, error) {
			return nil, &provider.Error{Message: "session_not_found", StatusCode: 401}
		},
	}
	c, s, clock, _ := setupCoordinator(t, p)
	ctx := context.Background()

	s.SaveAuthToken(ctx, signedToken(t, clock.Now().Add(time.Hour)))
	s.SaveRefreshToken(ctx, "refresh-def")
	p.refreshFn = func(ctx context.Context, refreshToken string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}

	c.Start(ctx)
	t.Cleanup(c.Stop)

	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, 1, p.getUserCalls)
	_, refresh, _ := p.calls()
	assert.Equal(t, 1, refresh)
}

func TestStart_ExpiredStoredTokenUsesRefreshGrant(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	ctx := context.Background()

	s.SaveAuthToken(ctx, signedToken(t, clock.Now().Add(-time.Minute)))
	s.SaveRefreshToken(ctx, "refresh-def")
	p.refreshFn = func(ctx context.Context, refreshToken string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}

	c.Start(ctx)
	t.Cleanup(c.Stop)

	assert.True(t, c.IsAuthenticated())
	// The expired token is not worth presenting at all.
	assert.Zero(t, p.getUserCalls)
	_, refresh, _ := p.calls()
	assert.Equal(t, 1, refresh)
}

func TestStart_NoStoredSessionLandsUnauthenticated(t *testing.T) {
	p := &fakeProvider{}
	c, _, _, _ := setupCoordinator(t, p)

	c.Start(context.Background())
	t.Cleanup(c.Stop)

	assert.False(t, c.IsLoading())
	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, c.LastError(), "a cold start without a session is not an error")

	signIn, refresh, _ := p.calls()
	assert.Zero(t, signIn)
	assert.Zero(t, refresh)
	assert.Zero(t, p.getUserCalls)
}

func TestStart_RefreshFailureLandsUnauthenticatedSilently(t *testing.T) {
	p := &fakeProvider{
		refreshFn: func(ctx context.Context, refreshToken string) (*provider.Session, error) {
			return nil, &provider.Error{Message: "invalid_grant", StatusCode: 400}
		},
	}
	c, s, _, _ := setupCoordinator(t, p)
	ctx := context.Background()

	s.SaveRefreshToken(ctx, "refresh-stale")

	c.Start(ctx)
	t.Cleanup(c.Stop)

	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, c.LastError())
	_, refresh, _ := p.calls()
	assert.Equal(t, 1, refresh)
}

func TestRefreshOnce_FailureDoesNotForceSignOut(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}
	p.refreshFn = func(ctx context.Context, refreshToken string) (*provider.Session, error) {
		return nil, &provider.Error{Message: "network down", StatusCode: 503}
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	c.refreshOnce()

	// The existing token stays valid until its own expiry.
	assert.True(t, c.IsAuthenticated())
	assert.Empty(t, c.LastError())
	token, ok := s.GetAuthToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "access-abc", token)
}

func TestRefreshOnce_AppliesRenewedSession(t *testing.T) {
	p := &fakeProvider{}
	c, s, clock, _ := setupCoordinator(t, p)
	p.signInFn = func(ctx context.Context, email, password string) (*provider.Session, error) {
		return validSession(clock, "owner"), nil
	}
	p.refreshFn = func(ctx context.Context, refreshToken string) (*provider.Session, error) {
		sess := validSession(clock, "owner")
		sess.AccessToken = "access-renewed"
		sess.RefreshToken = "refresh-renewed"
		return sess, nil
	}

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "ada@example.com", "secret123"))

	c.refreshOnce()

	assert.True(t, c.IsAuthenticated())
	token, ok := s.GetAuthToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "access-renewed", token)
	refresh, ok := s.GetRefreshToken(ctx)
	require.True(t, ok)
	assert.Equal(t, "refresh-renewed", refresh)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Unix(1_700_000_000, 0).UTC().Add(time.Hour)

	assert.Equal(t, exp.Unix(), tokenExpiry(signedToken(t, exp)).Unix())
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
	assert.True(t, tokenExpiry("").IsZero())

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"})
	signed, err := noExp.SignedString([]byte("signing-key"))
	require.NoError(t, err)
	assert.True(t, tokenExpiry(signed).IsZero())
}
func TestUpdateUser_RequiresAuthenticatedUser(t *testing.T) {
	p := &fakeProvider{}
	c, _, _, _ := setupCoordinator(t, p)

	first := "Grace"
	err := c.UpdateUser(context.Background(), domain.UserUpdate{FirstName: &first})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeAuthentication, apperrors.AsAppError(err).Type)
}
