package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dogwalker-be/internal/domain"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/kv"
	"dogwalker-be/pkg/logger"
)

type fakeWalkerRepo struct {
	mu        sync.Mutex
	listings  map[string]domain.WalkerListing
	listCalls int
	getCalls  int
}

func newFakeWalkerRepo() *fakeWalkerRepo {
	return &fakeWalkerRepo{listings: map[string]domain.WalkerListing{}}
}

func (f *fakeWalkerRepo) ListWalkers(ctx context.Context, filter domain.WalkerFilter) ([]domain.WalkerListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []domain.WalkerListing
	for _, l := range f.listings {
		if filter.VerifiedOnly && l.VerificationStatus != domain.VerificationApproved {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeWalkerRepo) GetWalkerByID(ctx context.Context, id string) (*domain.WalkerListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	l, ok := f.listings[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f *fakeWalkerRepo) UpsertWalker(ctx context.Context, listing *domain.WalkerListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing.CreatedAt = time.Now().UTC()
	f.listings[listing.ID] = *listing
	return nil
}

func setupDirectoryService(t *testing.T) (*miniredis.Miniredis, *fakeWalkerRepo, *CachedDirectoryService) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	kvc, err := kv.NewClient("redis://"+mr.Addr(), "test", logger.NewNop().Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvc.Close() })

	repo := newFakeWalkerRepo()
	return mr, repo, NewCachedDirectoryService(repo, kvc, logger.NewNop())
}

func sampleListing(id string) domain.WalkerListing {
	return domain.WalkerListing{
		ID:                 id,
		UserID:             "u-" + id,
		DisplayName:        "Walker " + id,
		HourlyRate:         20,
		Rating:             4.8,
		TotalWalks:         12,
		VerificationStatus: domain.VerificationApproved,
		CreatedAt:          time.Unix(1_700_000_000, 0).UTC(),
	}
}

func TestGetWalker_CacheHitSkipsRepository(t *testing.T) {
	mr, repo, svc := setupDirectoryService(t)
	ctx := context.Background()

	listing := sampleListing("w-1")
	data, err := json.Marshal(listing)
	require.NoError(t, err)
	require.NoError(t, mr.Set("staging:directory:walker:w-1", string(data)))

	got, err := svc.GetWalker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "Walker w-1", got.DisplayName)
	assert.Zero(t, repo.getCalls)
}

func TestGetWalker_CacheMissFallsBackToRepository(t *testing.T) {
	_, repo, svc := setupDirectoryService(t)
	ctx := context.Background()

	repo.listings["w-1"] = sampleListing("w-1")

	got, err := svc.GetWalker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "w-1", got.ID)
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetWalker_CorruptedCacheFallsBack(t *testing.T) {
	mr, repo, svc := setupDirectoryService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("staging:directory:walker:w-1", "{not json"))
	repo.listings["w-1"] = sampleListing("w-1")

	got, err := svc.GetWalker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "w-1", got.ID)
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetWalker_NotFound(t *testing.T) {
	_, _, svc := setupDirectoryService(t)

	_, err := svc.GetWalker(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.AsAppError(err).Type)
}

func TestListWalkers_UnfilteredListIsServedFromCache(t *testing.T) {
	mr, repo, svc := setupDirectoryService(t)
	ctx := context.Background()

	listings := []domain.WalkerListing{sampleListing("w-1"), sampleListing("w-2")}
	data, err := json.Marshal(listings)
	require.NoError(t, err)
	require.NoError(t, mr.Set("staging:directory:walkers:all", string(data)))

	got, err := svc.ListWalkers(ctx, domain.WalkerFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Zero(t, repo.listCalls)
}

func TestListWalkers_FilteredQueryBypassesCache(t *testing.T) {
	mr, repo, svc := setupDirectoryService(t)
	ctx := context.Background()

	// A stale cached list must not answer filtered queries.
	data, err := json.Marshal([]domain.WalkerListing{sampleListing("stale")})
	require.NoError(t, err)
	require.NoError(t, mr.Set("staging:directory:walkers:all", string(data)))

	pending := sampleListing("w-1")
	pending.VerificationStatus = domain.VerificationPending
	repo.listings["w-1"] = pending
	repo.listings["w-2"] = sampleListing("w-2")

	got, err := svc.ListWalkers(ctx, domain.WalkerFilter{VerifiedOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "w-2", got[0].ID)
	assert.Equal(t, 1, repo.listCalls)
}

func TestPublishWalker_RejectsNonWalkerProfiles(t *testing.T) {
	_, _, svc := setupDirectoryService(t)

	owner, err := domain.NewOwner("u-1", "owner@example.com", time.Now().UTC(), domain.IdentityMetadata{})
	require.NoError(t, err)

	_, err = svc.PublishWalker(context.Background(), owner)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.AsAppError(err).Type)
}

func TestPublishWalker_UpsertsAndInvalidatesCache(t *testing.T) {
	mr, repo, svc := setupDirectoryService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("staging:directory:walkers:all", "[]"))

	walker, err := domain.NewWalker("u-7", "walker@example.com", time.Now().UTC(), domain.IdentityMetadata{
		FirstName: "Grace",
		LastName:  "Hopper",
	})
	require.NoError(t, err)
	rate := 25.0
	walker.Walker.Bio = "Evening walks a specialty"
	walker.Walker.HourlyRate = &rate

	listing, err := svc.PublishWalker(ctx, walker)
	require.NoError(t, err)
	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, "u-7", listing.UserID)
	assert.Equal(t, "Grace Hopper", listing.DisplayName)
	assert.Equal(t, 25.0, listing.HourlyRate)

	_, ok := repo.listings[listing.ID]
	assert.True(t, ok)
	assert.False(t, mr.Exists("staging:directory:walkers:all"))
}
