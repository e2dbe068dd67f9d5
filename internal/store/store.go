package store

import (
	"context"
	"encoding/json"
	"fmt"

	"dogwalker-be/internal/domain"
	"dogwalker-be/pkg/kv"
	"dogwalker-be/pkg/logger"
)

// Store is the durable session store, split across two trust tiers over
// the shared KV client.
//
// The secret tier (credential pair) seals values with AES-GCM and is
// fail-safe: a write failure is logged and swallowed so the in-memory
// session keeps working, and a read failure reads as "not found". The
// plain tier (role flag, profile snapshot, completion flags) is
// fail-loud: write and delete failures propagate, because role-gating
// correctness depends on them.
//
// Secrets never touch the plain tier under any code path.
type Store struct {
	kv  *kv.Client
	box *cipherBox
	log *logger.Logger
}

// New creates a session store. cipherKeyHex seals the secret tier; when
// empty, secret-tier writes are skipped entirely (memory-only sessions)
// rather than falling back to plaintext.
func New(kvc *kv.Client, cipherKeyHex string, log *logger.Logger) (*Store, error) {
	var box *cipherBox
	if cipherKeyHex != "" {
		var err error
		box, err = newCipherBox(cipherKeyHex)
		if err != nil {
			return nil, fmt.Errorf("session store cipher: %w", err)
		}
	} else {
		log.Warn("No session cipher key configured, credential persistence disabled")
	}
	return &Store{kv: kvc, box: box, log: log}, nil
}

// --- secret tier -----------------------------------------------------

// SaveAuthToken persists the access token to the secret tier. Failures
// are logged and swallowed; the session remains usable in memory.
func (s *Store) SaveAuthToken(ctx context.Context, token string) {
	s.saveSecret(ctx, keyAuthToken, token)
}

// GetAuthToken retrieves the access token. ok is false when the token
// is absent, unreadable, or unsealable.
func (s *Store) GetAuthToken(ctx context.Context) (string, bool) {
	return s.getSecret(ctx, keyAuthToken)
}

// RemoveAuthToken deletes the access token. Best effort.
func (s *Store) RemoveAuthToken(ctx context.Context) {
	s.removeSecret(ctx, keyAuthToken)
}

// SaveRefreshToken persists the refresh token to the secret tier.
func (s *Store) SaveRefreshToken(ctx context.Context, token string) {
	s.saveSecret(ctx, keyRefreshToken, token)
}

// GetRefreshToken retrieves the refresh token.
func (s *Store) GetRefreshToken(ctx context.Context) (string, bool) {
	return s.getSecret(ctx, keyRefreshToken)
}

// RemoveRefreshToken deletes the refresh token. Best effort.
func (s *Store) RemoveRefreshToken(ctx context.Context) {
	s.removeSecret(ctx, keyRefreshToken)
}

func (s *Store) saveSecret(ctx context.Context, name, value string) {
	if value == "" {
		s.log.WithField("key", name).Warn("Attempted to save empty secret")
		return
	}
	if s.box == nil {
		return
	}
	sealed, err := s.box.seal(value)
	if err != nil {
		s.log.WithError(err).WithField("key", name).Error("Failed to seal secret")
		return
	}
	if err := s.kv.Set(ctx, s.kv.BuildKey(name), sealed, 0); err != nil {
		// Fail-safe: the in-memory session keeps working for this
		// process lifetime.
		s.log.WithError(err).WithField("key", name).Error("Failed to persist secret")
	}
}

func (s *Store) getSecret(ctx context.Context, name string) (string, bool) {
	if s.box == nil {
		return "", false
	}
	sealed, err := s.kv.Get(ctx, s.kv.BuildKey(name))
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.WithError(err).WithField("key", name).Error("Failed to read secret")
		}
		return "", false
	}
	value, err := s.box.open(sealed)
	if err != nil {
		s.log.WithError(err).WithField("key", name).Error("Failed to unseal secret")
		return "", false
	}
	return value, true
}

func (s *Store) removeSecret(ctx context.Context, name string) {
	if err := s.kv.Delete(ctx, s.kv.BuildKey(name)); err != nil {
		s.log.WithError(err).WithField("key", name).Error("Failed to remove secret")
	}
}

// --- plain tier ------------------------------------------------------

// SaveUserRole persists the device role flag. Fail-loud.
func (s *Store) SaveUserRole(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}
	if err := s.kv.Set(ctx, s.kv.BuildKey(keyUserRole), role.String(), 0); err != nil {
		s.log.WithError(err).Error("Failed to save user role")
		return err
	}
	s.log.WithField("role", role.String()).Debug("User role saved")
	return nil
}

// GetUserRole reads the device role flag. An absent, unreadable, or
// malformed value reads as "no role chosen" so corrupted storage can
// never poison role gating.
func (s *Store) GetUserRole(ctx context.Context) (domain.Role, bool) {
	raw, err := s.kv.Get(ctx, s.kv.BuildKey(keyUserRole))
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.WithError(err).Error("Failed to read user role")
		}
		return "", false
	}
	role, ok := domain.ParseRole(raw)
	if !ok {
		s.log.WithField("value", raw).Warn("Invalid role value in storage")
		return "", false
	}
	return role, true
}

// RemoveUserRole deletes the device role flag. Fail-loud.
func (s *Store) RemoveUserRole(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.kv.BuildKey(keyUserRole)); err != nil {
		s.log.WithError(err).Error("Failed to remove user role")
		return err
	}
	return nil
}

// SaveUserData persists the profile snapshot. The snapshot is a cold-
// start cache, not the source of truth, but its write is fail-loud.
func (s *Store) SaveUserData(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user data: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.BuildKey(keyUserData), string(data), 0); err != nil {
		s.log.WithError(err).Error("Failed to save user data")
		return err
	}
	return nil
}

// GetUserData reads the profile snapshot. Malformed snapshots read as
// absent; the snapshot must pass the tag/variant invariant to be used.
func (s *Store) GetUserData(ctx context.Context) (*domain.User, bool) {
	raw, err := s.kv.Get(ctx, s.kv.BuildKey(keyUserData))
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.WithError(err).Error("Failed to read user data")
		}
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.WithError(err).Warn("Malformed user data in storage")
		return nil, false
	}
	if err := user.Validate(); err != nil {
		s.log.WithError(err).Warn("Invalid user data in storage")
		return nil, false
	}
	return &user, true
}

// RemoveUserData deletes the profile snapshot. Fail-loud.
func (s *Store) RemoveUserData(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.kv.BuildKey(keyUserData)); err != nil {
		s.log.WithError(err).Error("Failed to remove user data")
		return err
	}
	return nil
}

// SaveOnboardingCompleted marks onboarding done for a role.
func (s *Store) SaveOnboardingCompleted(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}
	if err := s.kv.Set(ctx, s.kv.BuildKey(roleKey(keyOnboardingCompleted, role)), "true", 0); err != nil {
		s.log.WithError(err).Error("Failed to save onboarding status")
		return err
	}
	return nil
}

// GetOnboardingCompleted reports whether onboarding is done for a role.
// Errors read as "not completed".
func (s *Store) GetOnboardingCompleted(ctx context.Context, role domain.Role) bool {
	raw, err := s.kv.Get(ctx, s.kv.BuildKey(roleKey(keyOnboardingCompleted, role)))
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.WithError(err).Error("Failed to read onboarding status")
		}
		return false
	}
	return raw == "true"
}

// SaveSetupCompleted marks profile setup done for a role.
func (s *Store) SaveSetupCompleted(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}
	if err := s.kv.Set(ctx, s.kv.BuildKey(roleKey(keySetupCompleted, role)), "true", 0); err != nil {
		s.log.WithError(err).Error("Failed to save setup status")
		return err
	}
	return nil
}

// GetSetupCompleted reports whether profile setup is done for a role.
func (s *Store) GetSetupCompleted(ctx context.Context, role domain.Role) bool {
	raw, err := s.kv.Get(ctx, s.kv.BuildKey(roleKey(keySetupCompleted, role)))
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.WithError(err).Error("Failed to read setup status")
		}
		return false
	}
	return raw == "true"
}

// --- bulk ------------------------------------------------------------

// ClearAllAuthData removes both credential entries and every plain
// entry in one logical operation. Partial failure still returns an
// error; the logout flow treats this as correctness-critical. Safe to
// call repeatedly.
func (s *Store) ClearAllAuthData(ctx context.Context) error {
	var firstErr error

	if err := s.kv.Delete(ctx, s.kv.BuildKey(keyAuthToken), s.kv.BuildKey(keyRefreshToken)); err != nil {
		s.log.WithError(err).Error("Failed to clear credential entries")
		firstErr = err
	}

	plainKeys := []string{
		s.kv.BuildKey(keyUserRole),
		s.kv.BuildKey(keyUserData),
		s.kv.BuildKey(roleKey(keyOnboardingCompleted, domain.RoleOwner)),
		s.kv.BuildKey(roleKey(keyOnboardingCompleted, domain.RoleWalker)),
		s.kv.BuildKey(roleKey(keySetupCompleted, domain.RoleOwner)),
		s.kv.BuildKey(roleKey(keySetupCompleted, domain.RoleWalker)),
	}
	if err := s.kv.Delete(ctx, plainKeys...); err != nil {
		s.log.WithError(err).Error("Failed to clear plain entries")
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return fmt.Errorf("failed to clear auth data: %w", firstErr)
	}
	s.log.Info("All authentication data cleared")
	return nil
}
