package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dogwalker-be/internal/domain"
	"dogwalker-be/pkg/database"
)

type PostgresDogRepository struct {
	db *database.PostgresDB
}

func NewPostgresDogRepository(db *database.PostgresDB) *PostgresDogRepository {
	return &PostgresDogRepository{db: db}
}

// ListByOwner gets all dogs belonging to an owner, oldest first.
func (r *PostgresDogRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Dog, error) {
	query := `
		SELECT id, owner_id, name, breed, age, weight, photo_url,
		       special_needs, temperament, vaccination_status, created_at
		FROM dogs
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dogs: %w", err)
	}
	defer rows.Close()

	var dogs []domain.Dog
	for rows.Next() {
		var d domain.Dog
		err := rows.Scan(
			&d.ID,
			&d.OwnerID,
			&d.Name,
			&d.Breed,
			&d.Age,
			&d.Weight,
			&d.PhotoURL,
			&d.SpecialNeeds,
			&d.Temperament,
			&d.VaccinationStatus,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dog: %w", err)
		}
		dogs = append(dogs, d)
	}

	return dogs, nil
}

// GetByID gets a dog by ID, nil when absent.
func (r *PostgresDogRepository) GetByID(ctx context.Context, id string) (*domain.Dog, error) {
	var d domain.Dog
	query := `
		SELECT id, owner_id, name, breed, age, weight, photo_url,
		       special_needs, temperament, vaccination_status, created_at
		FROM dogs
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.OwnerID,
		&d.Name,
		&d.Breed,
		&d.Age,
		&d.Weight,
		&d.PhotoURL,
		&d.SpecialNeeds,
		&d.Temperament,
		&d.VaccinationStatus,
		&d.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dog: %w", err)
	}

	return &d, nil
}

// Create inserts a new dog record.
func (r *PostgresDogRepository) Create(ctx context.Context, dog *domain.Dog) error {
	query := `
		INSERT INTO dogs (
			id, owner_id, name, breed, age, weight, photo_url,
			special_needs, temperament, vaccination_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		dog.ID,
		dog.OwnerID,
		dog.Name,
		dog.Breed,
		dog.Age,
		dog.Weight,
		dog.PhotoURL,
		dog.SpecialNeeds,
		dog.Temperament,
		dog.VaccinationStatus,
	).Scan(&dog.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create dog: %w", err)
	}

	return nil
}

// Delete removes a dog, scoped to its owner so one owner cannot delete
// another owner's dog.
func (r *PostgresDogRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM dogs WHERE id = $1 AND owner_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete dog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
