package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/repository"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/kv"
	"dogwalker-be/pkg/logger"
)

// Cache keys and TTLs for the walker directory. Listings change rarely,
// so a short list TTL and a longer per-walker TTL are enough.
const (
	keyWalkersAll  = "directory:walkers:all"
	keyWalkerByID  = "directory:walker:%s"
	ttlWalkersAll  = 5 * time.Minute
	ttlWalkerByID  = 15 * time.Minute
	cacheOpTimeout = 5 * time.Second
)

// CachedDirectoryService serves the walker directory with a cache-aside
// layer in front of Postgres. Cache failures never fail a read; they
// fall through to the database.
type CachedDirectoryService struct {
	repo repository.WalkerRepository
	kv   *kv.Client
	log  *logger.Logger
}

func NewCachedDirectoryService(repo repository.WalkerRepository, kvc *kv.Client, log *logger.Logger) *CachedDirectoryService {
	return &CachedDirectoryService{repo: repo, kv: kvc, log: log}
}

// ListWalkers returns listings matching the filter. Only the unfiltered
// listing is cached; filtered queries go straight to the database.
func (s *CachedDirectoryService) ListWalkers(ctx context.Context, filter domain.WalkerFilter) ([]domain.WalkerListing, error) {
	cacheable := filter == (domain.WalkerFilter{})

	if cacheable {
		cacheKey := s.kv.BuildKey(keyWalkersAll)
		cached, err := s.kv.Get(ctx, cacheKey)
		if err == nil && cached != "" {
			var listings []domain.WalkerListing
			if unmarshalErr := json.Unmarshal([]byte(cached), &listings); unmarshalErr == nil {
				s.log.Debug("Walker list cache hit")
				return listings, nil
			}
			s.log.Warn("Walker list cache corrupted, falling back to database")
		} else if err != nil && !kv.IsNotFound(err) {
			s.log.WithError(err).Warn("Walker list cache error, falling back to database")
		}
	}

	listings, err := s.repo.ListWalkers(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load walker directory", err)
	}

	if cacheable && len(listings) > 0 {
		go s.cacheListingsAsync(listings)
	}

	return listings, nil
}

// GetWalker returns a single listing, cache first.
func (s *CachedDirectoryService) GetWalker(ctx context.Context, id string) (*domain.WalkerListing, error) {
	cacheKey := s.kv.BuildKey(fmt.Sprintf(keyWalkerByID, id))

	cached, err := s.kv.Get(ctx, cacheKey)
	if err == nil && cached != "" {
		var listing domain.WalkerListing
		if unmarshalErr := json.Unmarshal([]byte(cached), &listing); unmarshalErr == nil {
			s.log.WithField("walker_id", id).Debug("Walker cache hit")
			return &listing, nil
		}
		s.log.WithField("walker_id", id).Warn("Walker cache corrupted, falling back to database")
	} else if err != nil && !kv.IsNotFound(err) {
		s.log.WithError(err).Warn("Walker cache error, falling back to database")
	}

	listing, err := s.repo.GetWalkerByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load walker", err)
	}
	if listing == nil {
		return nil, apperrors.NewNotFoundError("Walker not found")
	}

	go s.cacheWalkerAsync(listing)

	return listing, nil
}

// PublishWalker projects a walker profile into the public directory and
// invalidates the affected cache entries.
func (s *CachedDirectoryService) PublishWalker(ctx context.Context, user *domain.User) (*domain.WalkerListing, error) {
	if user == nil || !user.IsWalker() {
		return nil, apperrors.NewValidationError("Only walker profiles can be published to the directory", nil)
	}

	listing := &domain.WalkerListing{
		ID:                 uuid.New().String(),
		UserID:             user.ID,
		DisplayName:        displayName(user),
		Bio:                user.Walker.Bio,
		VerificationStatus: user.Walker.VerificationStatus,
	}
	if user.Walker.HourlyRate != nil {
		listing.HourlyRate = *user.Walker.HourlyRate
	}
	if user.Walker.Rating != nil {
		listing.Rating = *user.Walker.Rating
	}
	listing.TotalWalks = user.Walker.TotalWalks

	if err := s.repo.UpsertWalker(ctx, listing); err != nil {
		return nil, apperrors.NewInternalError("Failed to publish walker listing", err)
	}

	s.invalidateListingCaches(listing.ID)

	s.log.WithFields(map[string]interface{}{
		"walker_id": listing.ID,
		"user_id":   user.ID,
	}).Info("Walker listing published")

	return listing, nil
}

func (s *CachedDirectoryService) cacheListingsAsync(listings []domain.WalkerListing) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	data, err := json.Marshal(listings)
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal walker list for caching")
		return
	}
	if err := s.kv.Set(ctx, s.kv.BuildKey(keyWalkersAll), string(data), ttlWalkersAll); err != nil {
		s.log.WithError(err).Error("Failed to cache walker list")
	}
}

func (s *CachedDirectoryService) cacheWalkerAsync(listing *domain.WalkerListing) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	data, err := json.Marshal(listing)
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal walker for caching")
		return
	}
	cacheKey := s.kv.BuildKey(fmt.Sprintf(keyWalkerByID, listing.ID))
	if err := s.kv.Set(ctx, cacheKey, string(data), ttlWalkerByID); err != nil {
		s.log.WithError(err).Error("Failed to cache walker")
	}
}

func (s *CachedDirectoryService) invalidateListingCaches(walkerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	keys := []string{
		s.kv.BuildKey(keyWalkersAll),
		s.kv.BuildKey(fmt.Sprintf(keyWalkerByID, walkerID)),
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Error("Failed to invalidate directory caches")
	}
}

func displayName(user *domain.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Email
	}
	return name
}
