package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS dogs CASCADE`,
		`DROP TABLE IF EXISTS walker_listings CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS walker_listings (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			hourly_rate NUMERIC(8,2) NOT NULL DEFAULT 0,
			rating NUMERIC(3,2) NOT NULL DEFAULT 0,
			total_walks INTEGER NOT NULL DEFAULT 0,
			verification_status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_walker_listings_city ON walker_listings (city)`,
		`CREATE INDEX IF NOT EXISTS idx_walker_listings_rating ON walker_listings (rating DESC, total_walks DESC)`,
		`CREATE TABLE IF NOT EXISTS dogs (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			breed TEXT NOT NULL DEFAULT '',
			age INTEGER,
			weight NUMERIC(5,2),
			photo_url TEXT NOT NULL DEFAULT '',
			special_needs TEXT NOT NULL DEFAULT '',
			temperament TEXT NOT NULL DEFAULT '',
			vaccination_status TEXT NOT NULL DEFAULT 'unknown',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dogs_owner ON dogs (owner_id)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	fmt.Println("  Created: walker_listings, dogs")

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	query := `
		INSERT INTO walker_listings (
			id, user_id, display_name, bio, city, hourly_rate, rating,
			total_walks, verification_status
		)
		VALUES
			('3f1a6f1e-0c69-4f5a-9a41-0f6f1a2b3c4d', 'seed-walker-1', 'Grace Hopper',
			 'Early morning walks, big dogs welcome', 'Bangkok', 25.00, 4.90, 182, 'approved'),
			('8b2c7d3e-1d70-4a6b-8b52-1a7b2c3d4e5f', 'seed-walker-2', 'Alan Kay',
			 'Patient with reactive dogs', 'Bangkok', 18.50, 4.60, 74, 'approved'),
			('c4d8e9f0-2e81-4b7c-9c63-2b8c3d4e5f6a', 'seed-walker-3', 'Barbara Liskov',
			 'Weekend availability only', 'Chiang Mai', 15.00, 4.20, 31, 'pending')
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to seed walker listings: %w", err)
	}
	fmt.Println("  Seeded: 3 walker listings")

	return nil
}
