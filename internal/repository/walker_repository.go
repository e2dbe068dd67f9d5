package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dogwalker-be/internal/domain"
	"dogwalker-be/pkg/database"
)

const defaultListingLimit = 50

type PostgresWalkerRepository struct {
	db *database.PostgresDB
}

func NewPostgresWalkerRepository(db *database.PostgresDB) *PostgresWalkerRepository {
	return &PostgresWalkerRepository{db: db}
}

// ListWalkers returns directory listings matching the filter, best
// rated first.
func (r *PostgresWalkerRepository) ListWalkers(ctx context.Context, filter domain.WalkerFilter) ([]domain.WalkerListing, error) {
	query := `
		SELECT id, user_id, display_name, bio, city, hourly_rate, rating,
		       total_walks, verification_status, created_at
		FROM walker_listings
		WHERE ($1 = '' OR city = $1)
		  AND rating >= $2
		  AND ($3 = 0 OR hourly_rate <= $3)
		  AND ($4 = false OR verification_status = 'approved')
		ORDER BY rating DESC, total_walks DESC
		LIMIT $5
	`

	limit := filter.Limit
	if limit <= 0 || limit > defaultListingLimit {
		limit = defaultListingLimit
	}

	rows, err := r.db.Pool.Query(ctx, query,
		filter.City,
		filter.MinRating,
		filter.MaxRate,
		filter.VerifiedOnly,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list walkers: %w", err)
	}
	defer rows.Close()

	var listings []domain.WalkerListing
	for rows.Next() {
		var l domain.WalkerListing
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.DisplayName,
			&l.Bio,
			&l.City,
			&l.HourlyRate,
			&l.Rating,
			&l.TotalWalks,
			&l.VerificationStatus,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan walker listing: %w", err)
		}
		listings = append(listings, l)
	}

	return listings, nil
}

// GetWalkerByID gets a single listing, nil when no such walker exists.
func (r *PostgresWalkerRepository) GetWalkerByID(ctx context.Context, id string) (*domain.WalkerListing, error) {
	var l domain.WalkerListing
	query := `
		SELECT id, user_id, display_name, bio, city, hourly_rate, rating,
		       total_walks, verification_status, created_at
		FROM walker_listings
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.UserID,
		&l.DisplayName,
		&l.Bio,
		&l.City,
		&l.HourlyRate,
		&l.Rating,
		&l.TotalWalks,
		&l.VerificationStatus,
		&l.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get walker listing: %w", err)
	}

	return &l, nil
}

// UpsertWalker creates or refreshes the listing keyed by user ID.
func (r *PostgresWalkerRepository) UpsertWalker(ctx context.Context, listing *domain.WalkerListing) error {
	query := `
		INSERT INTO walker_listings (
			id, user_id, display_name, bio, city, hourly_rate, rating,
			total_walks, verification_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			city = EXCLUDED.city,
			hourly_rate = EXCLUDED.hourly_rate,
			rating = EXCLUDED.rating,
			total_walks = EXCLUDED.total_walks,
			verification_status = EXCLUDED.verification_status
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		listing.ID,
		listing.UserID,
		listing.DisplayName,
		listing.Bio,
		listing.City,
		listing.HourlyRate,
		listing.Rating,
		listing.TotalWalks,
		listing.VerificationStatus,
	).Scan(&listing.ID, &listing.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert walker listing: %w", err)
	}

	return nil
}
