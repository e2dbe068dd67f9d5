package service

import (
	"context"

	"dogwalker-be/internal/domain"
)

// DirectoryService exposes the public walker directory.
type DirectoryService interface {
	// ListWalkers returns listings matching the filter
	ListWalkers(ctx context.Context, filter domain.WalkerFilter) ([]domain.WalkerListing, error)

	// GetWalker returns a single listing
	GetWalker(ctx context.Context, id string) (*domain.WalkerListing, error)

	// PublishWalker creates or refreshes the directory listing for a
	// walker-side user profile
	PublishWalker(ctx context.Context, user *domain.User) (*domain.WalkerListing, error)
}

// DogService manages an owner's dogs.
type DogService interface {
	// ListDogs returns all dogs belonging to an owner
	ListDogs(ctx context.Context, ownerID string) ([]domain.Dog, error)

	// GetDog returns a single dog owned by the given owner
	GetDog(ctx context.Context, id, ownerID string) (*domain.Dog, error)

	// AddDog registers a new dog for an owner
	AddDog(ctx context.Context, ownerID string, dog domain.Dog) (*domain.Dog, error)

	// RemoveDog deletes a dog owned by the given owner
	RemoveDog(ctx context.Context, id, ownerID string) error
}
