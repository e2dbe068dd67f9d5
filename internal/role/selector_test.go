package role

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/store"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/kv"
	"dogwalker-be/pkg/logger"
)

func setupSelector(t *testing.T) (*miniredis.Miniredis, *store.Store, *Selector) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	kvc, err := kv.NewClient("redis://"+mr.Addr(), "test", logger.NewNop().Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvc.Close() })

	s, err := store.New(kvc, "", logger.NewNop())
	require.NoError(t, err)

	return mr, s, NewSelector(s, logger.NewNop())
}

func TestSelector_LoadWithoutStoredPreference(t *testing.T) {
	_, _, sel := setupSelector(t)

	assert.True(t, sel.IsLoading())
	sel.Load(context.Background())
	assert.False(t, sel.IsLoading())

	_, ok := sel.Role()
	assert.False(t, ok)
}

func TestSelector_SetAndReload(t *testing.T) {
	_, s, sel := setupSelector(t)
	ctx := context.Background()

	sel.Load(ctx)
	require.NoError(t, sel.SetRole(ctx, domain.RoleWalker))

	role, ok := sel.Role()
	require.True(t, ok)
	assert.Equal(t, domain.RoleWalker, role)

	// A fresh selector over the same store sees the persisted value.
	sel2 := NewSelector(s, logger.NewNop())
	sel2.Load(ctx)
	role, ok = sel2.Role()
	require.True(t, ok)
	assert.Equal(t, domain.RoleWalker, role)
}

func TestSelector_SetRejectsInvalidRole(t *testing.T) {
	_, _, sel := setupSelector(t)

	err := sel.SetRole(context.Background(), domain.Role("admin"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)

	_, ok := sel.Role()
	assert.False(t, ok)
}

func TestSelector_LoadTreatsMalformedValueAsAbsent(t *testing.T) {
	mr, _, sel := setupSelector(t)

	require.NoError(t, mr.Set("staging:session:user_role", "superuser"))
	sel.Load(context.Background())

	_, ok := sel.Role()
	assert.False(t, ok)
}

func TestSelector_ClearRole(t *testing.T) {
	_, s, sel := setupSelector(t)
	ctx := context.Background()

	sel.Load(ctx)
	require.NoError(t, sel.SetRole(ctx, domain.RoleOwner))
	require.NoError(t, sel.ClearRole(ctx))

	_, ok := sel.Role()
	assert.False(t, ok)
	_, ok = s.GetUserRole(ctx)
	assert.False(t, ok)

	// Clearing an absent preference is fine.
	require.NoError(t, sel.ClearRole(ctx))
}
