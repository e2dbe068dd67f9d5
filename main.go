package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"dogwalker-be/internal/config"
	"dogwalker-be/internal/container"
	"dogwalker-be/internal/handler"
	"dogwalker-be/internal/middleware"
	"dogwalker-be/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	container *container.Container
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// Stop the session coordinator (refresh loop, push subscription)
	if r.container.Coordinator != nil {
		r.log.Info("Stopping session coordinator...")
		r.container.Coordinator.Stop()
	}

	if r.container.KV != nil {
		r.log.Info("Closing KV connection...")
		if err := r.container.KV.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close KV connection")
			errs = append(errs, fmt.Errorf("KV close: %w", err))
		}
	}

	if r.container.DB != nil {
		r.log.Info("Closing database connection pool...")
		r.container.DB.Close()
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting dogwalker-be server")

	ctx := context.Background()

	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	// Restore any persisted session and hydrate the role preference
	// before the server starts answering.
	c.Coordinator.Start(ctx)
	c.Selector.Load(ctx)

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		container: c,
		server:    server,
		log:       log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c)
	authHandler := handler.NewAuthHandler(c.Coordinator, c.Selector, log)
	roleHandler := handler.NewRoleHandler(c.Selector, log)

	// Health check (no auth required)
	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/signup", authHandler.Signup)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.GetSession)
			r.Delete("/error", authHandler.ClearError)
			r.Patch("/user", authHandler.UpdateUser)
		})

		r.Route("/role", func(r chi.Router) {
			r.Get("/", roleHandler.GetRole)
			r.Put("/", roleHandler.SetRole)
			r.Delete("/", roleHandler.ClearRole)
		})

		if c.HasDirectory() {
			walkerHandler := handler.NewWalkerHandler(c.Directory, c.Coordinator, log)
			dogHandler := handler.NewDogHandler(c.Dogs, log)

			// Public directory
			r.Get("/walkers", walkerHandler.ListWalkers)
			r.Get("/walkers/{walkerId}", walkerHandler.GetWalker)

			// Protected routes (require a verified access token)
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.SupabaseJWTSecret, log))

				r.Post("/walkers/publish", walkerHandler.PublishProfile)
				r.Get("/dogs", dogHandler.ListDogs)
				r.Get("/dogs/{dogId}", dogHandler.GetDog)
				r.Post("/dogs", dogHandler.AddDog)
				r.Delete("/dogs/{dogId}", dogHandler.RemoveDog)
			})
		}
	})

	return r
}
