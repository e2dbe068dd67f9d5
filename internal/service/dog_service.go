package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dogwalker-be/internal/domain"
	"dogwalker-be/internal/repository"
	apperrors "dogwalker-be/pkg/errors"
	"dogwalker-be/pkg/logger"
)

// OwnerDogService manages an owner's dogs on top of the dog repository.
type OwnerDogService struct {
	repo repository.DogRepository
	log  *logger.Logger
}

func NewOwnerDogService(repo repository.DogRepository, log *logger.Logger) *OwnerDogService {
	return &OwnerDogService{repo: repo, log: log}
}

// ListDogs returns all dogs belonging to an owner.
func (s *OwnerDogService) ListDogs(ctx context.Context, ownerID string) ([]domain.Dog, error) {
	dogs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load dogs", err)
	}
	return dogs, nil
}

// GetDog returns a single dog. Ownership is checked here; another
// owner's dog reports not found rather than forbidden, so the endpoint
// does not leak which IDs exist.
func (s *OwnerDogService) GetDog(ctx context.Context, id, ownerID string) (*domain.Dog, error) {
	dog, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load dog", err)
	}
	if dog == nil || dog.OwnerID != ownerID {
		return nil, apperrors.NewNotFoundError("Dog not found")
	}
	return dog, nil
}

// AddDog registers a new dog. The server assigns the ID and owner; any
// client-supplied values for those fields are ignored.
func (s *OwnerDogService) AddDog(ctx context.Context, ownerID string, dog domain.Dog) (*domain.Dog, error) {
	if strings.TrimSpace(dog.Name) == "" {
		return nil, apperrors.NewValidationError("Dog name is required", nil)
	}

	dog.ID = uuid.New().String()
	dog.OwnerID = ownerID
	if dog.VaccinationStatus == "" {
		dog.VaccinationStatus = domain.VaccinationUnknown
	}

	if err := s.repo.Create(ctx, &dog); err != nil {
		return nil, apperrors.NewInternalError("Failed to add dog", err)
	}

	s.log.WithFields(map[string]interface{}{
		"dog_id":   dog.ID,
		"owner_id": ownerID,
	}).Info("Dog added")

	return &dog, nil
}

// RemoveDog deletes a dog. Deleting a dog that does not exist, or that
// belongs to a different owner, reports not found.
func (s *OwnerDogService) RemoveDog(ctx context.Context, id, ownerID string) error {
	err := s.repo.Delete(ctx, id, ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError("Dog not found")
	}
	if err != nil {
		return apperrors.NewInternalError("Failed to remove dog", err)
	}
	return nil
}
