package repository

import (
	"context"

	"dogwalker-be/internal/domain"
)

// WalkerRepository defines the interface for walker directory data operations
type WalkerRepository interface {
	// ListWalkers retrieves directory listings matching the filter
	ListWalkers(ctx context.Context, filter domain.WalkerFilter) ([]domain.WalkerListing, error)

	// GetWalkerByID retrieves a single listing, nil when absent
	GetWalkerByID(ctx context.Context, id string) (*domain.WalkerListing, error)

	// UpsertWalker creates or updates the listing for a walker user
	UpsertWalker(ctx context.Context, listing *domain.WalkerListing) error
}

// DogRepository defines the interface for dog data operations
type DogRepository interface {
	// ListByOwner retrieves all dogs belonging to an owner
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Dog, error)

	// GetByID retrieves a dog by ID, nil when absent
	GetByID(ctx context.Context, id string) (*domain.Dog, error)

	// Create creates a new dog record
	Create(ctx context.Context, dog *domain.Dog) error

	// Delete removes a dog owned by the given owner
	Delete(ctx context.Context, id, ownerID string) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Walker WalkerRepository
	Dog    DogRepository
}
