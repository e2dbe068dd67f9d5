// Package role manages the device-level role preference: which side of
// the marketplace (owner or walker) the client last chose. The
// preference is independent of authentication and survives logout only
// as far as the store's clearing policy allows.
package role

import (
	"context"
	"fmt"
	"sync"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/store"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

// Selector holds the current role preference in memory and keeps the
// plain storage tier in sync. Reads after Load never touch storage.
type Selector struct {
	store *store.Store
	log   *logger.Logger

	mu      sync.RWMutex
	role    domain.Role
	hasRole bool
	loading bool
}

// NewSelector creates a selector. Call Load before reading.
func NewSelector(s *store.Store, log *logger.Logger) *Selector {
	return &Selector{store: s, log: log, loading: true}
}

// Load hydrates the preference from storage. A missing or malformed
// stored value means no preference; it is not an error.
func (s *Selector) Load(ctx context.Context) {
	role, ok := s.store.GetUserRole(ctx)

	s.mu.Lock()
	s.role = role
	s.hasRole = ok
	s.loading = false
	s.mu.Unlock()

	if ok {
		s.log.WithField("role", role.String()).Debug("Role preference loaded")
	}
}

// Role returns the current preference. ok is false when none is set.
func (s *Selector) Role() (role domain.Role, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role, s.hasRole
}

// IsLoading reports whether Load has completed yet.
func (s *Selector) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetRole validates and persists a new preference. Persistence failure
// propagates and leaves the in-memory preference unchanged.
func (s *Selector) SetRole(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid role: %s", role), nil)
	}
	if err := s.store.SaveUserRole(ctx, role); err != nil {
		s.log.WithError(err).Error("Failed to persist role preference")
		return apperrors.NewInternalError("Failed to save role preference", err)
	}

	s.mu.Lock()
	s.role = role
	s.hasRole = true
	s.mu.Unlock()

	s.log.WithField("role", role.String()).Info("Role preference set")
	return nil
}

// ClearRole removes the preference from memory and storage.
func (s *Selector) ClearRole(ctx context.Context) error {
	if err := s.store.RemoveUserRole(ctx); err != nil {
		s.log.WithError(err).Error("Failed to remove role preference")
		return apperrors.NewInternalError("Failed to clear role preference", err)
	}

	s.mu.Lock()
	s.role = ""
	s.hasRole = false
	s.mu.Unlock()

	return nil
}
