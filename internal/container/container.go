package container

import (
	"context"
	"fmt"

	"dogwalker-be/internal/config"
	"dogwalker-be/internal/provider"
	"dogwalker-be/internal/repository"
	"dogwalker-be/internal/role"
	"dogwalker-be/internal/service"
	"dogwalker-be/internal/session"
	"dogwalker-be/internal/store"
	"dogwalker-be/pkg/database"
	"dogwalker-be/pkg/kv"
	"dogwalker-be/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	KV          *kv.Client
	DB          *database.PostgresDB
	Store       *store.Store
	Provider    provider.AuthProvider
	Coordinator *session.Coordinator
	Selector    *role.Selector

	Directory service.DirectoryService
	Dogs      service.DogService
}

// New creates a new dependency injection container. The database is
// optional; without it the directory and dog features stay disabled
// while the session core keeps working.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	// The protected routes verify access tokens locally; mounting them
	// without a signing secret would leave token verification keyed on
	// the empty string.
	if cfg.DatabaseURL != "" && cfg.SupabaseJWTSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required when DATABASE_URL is set")
	}

	kvc, err := kv.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KV client: %w", err)
	}

	sessionStore, err := store.New(kvc, cfg.SessionCipherKey, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	authProvider := provider.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, log)
	coordinator := session.New(authProvider, sessionStore, log)
	selector := role.NewSelector(sessionStore, log)

	c := &Container{
		Config:      cfg,
		Logger:      log,
		KV:          kvc,
		Store:       sessionStore,
		Provider:    authProvider,
		Coordinator: coordinator,
		Selector:    selector,
	}

	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		walkerRepo := repository.NewPostgresWalkerRepository(db)
		dogRepo := repository.NewPostgresDogRepository(db)
		c.Directory = service.NewCachedDirectoryService(walkerRepo, kvc, log)
		c.Dogs = service.NewOwnerDogService(dogRepo, log)
	} else {
		log.Info("DATABASE_URL not configured, directory features disabled")
	}

	return c, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasDirectory reports whether database-backed features are available.
func (c *Container) HasDirectory() bool {
	return c.DB != nil
}
