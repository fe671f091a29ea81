// Package server provides the HTTP server of the portfolio API.
// It wires configuration, storage, services and handlers together, owns
// the router and manages the server lifecycle including graceful shutdown
// and the background maintenance schedule.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/cache"
	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/database"
	"github.com/devfolio/portfolio-api/internal/handlers"
	"github.com/devfolio/portfolio-api/internal/metrics"
	"github.com/devfolio/portfolio-api/internal/middleware"
	"github.com/devfolio/portfolio-api/internal/repository"
	"github.com/devfolio/portfolio-api/internal/service"
	"github.com/devfolio/portfolio-api/internal/storage"
	"github.com/devfolio/portfolio-api/internal/utils/ratelimit"
	"github.com/devfolio/portfolio-api/migrations"
	"github.com/devfolio/portfolio-api/scripts"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	// AuthHandler serves signup and signin
	AuthHandler *handlers.AuthHandler

	// PasswordResetHandler serves the forgot and reset password flow
	PasswordResetHandler *handlers.PasswordResetHandler

	// UserHandler serves the current user's account endpoints
	UserHandler *handlers.UserHandler

	// ProjectHandler serves project CRUD
	ProjectHandler *handlers.ProjectHandler

	// PortfolioHandler serves private and public portfolios
	PortfolioHandler *handlers.PortfolioHandler
}

// AuthProviders contains the authentication building blocks shared by
// services and middleware.
type AuthProviders struct {
	// JWTService issues and validates bearer tokens
	JWTService *auth.JWTService

	// Hasher hashes and verifies passwords
	Hasher *auth.Hasher

	// ResetTokens hands out single-use password reset tokens
	ResetTokens *auth.ResetTokenManager
}

// repositories holds the data access layer used by the server.
type repositories struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
}

// services holds the business services used by the server.
type services struct {
	authService      *service.AuthService
	userService      *service.UserService
	resetService     *service.PasswordResetService
	projectService   *service.ProjectService
	portfolioService *service.PortfolioService
}

// Server represents the API server.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	authProviders *AuthProviders
	repos         repositories
	services      services

	metrics     *metrics.Metrics
	cache       *cache.Client
	images      storage.ImageStore
	rateLimiter *ratelimit.Store
	scheduler   *cron.Cron

	// httpServer is the underlying HTTP server
	httpServer *http.Server
}

// NewServer creates a new server instance with all required components.
// It connects to the database, applies migrations and seeds, then builds
// the remaining components on top of the connection.
//
// Parameters:
//   - cfg: Application configuration
//
// Returns:
//   - A fully initialized Server ready to start
//   - An error if any component fails to initialize
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.setupComponents(context.Background()); err != nil {
		s.Db.Close()
		return nil, err
	}

	return s, nil
}

// setupComponents builds everything that sits on top of the database
// connection, in dependency order: auth providers, infrastructure,
// repositories, services, handlers and routes.
func (s *Server) setupComponents(ctx context.Context) error {
	s.setupAuthProviders()

	if err := s.setupInfrastructure(ctx); err != nil {
		return fmt.Errorf("failed to set up infrastructure: %w", err)
	}

	s.setupRepositories()

	if err := s.setupServices(); err != nil {
		return fmt.Errorf("failed to set up services: %w", err)
	}

	if err := s.setupHandlers(); err != nil {
		return fmt.Errorf("failed to set up handlers: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.Config.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return nil
}

// setupDatabase connects to the database, runs migrations and seeds the
// demo data when enabled.
func (s *Server) setupDatabase() error {
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}

	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	seeder := scripts.NewSeeder(
		db,
		auth.NewPasswordHasher(auth.ConfigFromAppConfig(s.Config)),
		s.Config.App.SeedDemoData,
	)
	if err := seeder.SeedDatabase(context.Background()); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	return nil
}

// setupAuthProviders creates the token service, the password hasher and
// the reset token manager.
func (s *Server) setupAuthProviders() {
	s.authProviders = &AuthProviders{
		JWTService: auth.NewJWTService(&s.Config.JWT),
		Hasher:     auth.NewPasswordHasher(auth.ConfigFromAppConfig(s.Config)),
	}
}

// setupInfrastructure creates metrics, the image store, the project cache
// client and the auth route rate limiter.
func (s *Server) setupInfrastructure(ctx context.Context) error {
	if s.Config.Metrics.Enabled {
		s.metrics = metrics.NewMetrics()
		s.metrics.RegisterDB(s.Db.DB, s.Config.Database.Name)
	}

	images, err := storage.New(ctx, &s.Config.Storage, s.metrics)
	if err != nil {
		return fmt.Errorf("failed to set up image storage: %w", err)
	}
	s.images = images

	s.cache = cache.NewFromConfig(&s.Config.Cache)
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", s.Config.Cache.Addr).Msg("Redis unreachable, project cache will miss until it recovers")
		}
	}

	if s.Config.RateLimit.Enabled {
		s.rateLimiter = ratelimit.NewStore(
			ratelimit.Rate{
				RequestsPerSecond: s.Config.RateLimit.RequestsPerSecond,
				Burst:             s.Config.RateLimit.Burst,
			},
			s.Config.RateLimit.MaxClients,
			constants.RateLimitClientTTL,
		)
	}

	return nil
}

// setupRepositories initializes all data repositories.
func (s *Server) setupRepositories() {
	s.repos.userRepo = repository.NewUserRepository(s.Db)
	s.repos.projectRepo = repository.NewProjectRepository(s.Db)
	s.authProviders.ResetTokens = auth.NewResetTokenManager(s.repos.userRepo, s.Config.Reset.TokenTTL)
}

// setupServices initializes all business services.
func (s *Server) setupServices() error {
	if s.authProviders == nil || s.authProviders.JWTService == nil {
		return fmt.Errorf("JWT service not initialized")
	}
	if s.authProviders.Hasher == nil {
		return fmt.Errorf("password hasher not initialized")
	}

	emailSender, err := service.NewEmailSender(&s.Config.Email)
	if err != nil {
		return fmt.Errorf("failed to set up email sender: %w", err)
	}

	s.services.authService = service.NewAuthService(
		s.repos.userRepo,
		s.authProviders.Hasher,
		s.authProviders.JWTService,
		s.metrics,
	)

	s.services.projectService = service.NewProjectService(
		s.repos.projectRepo,
		s.images,
		cache.NewProjectCache(s.cache, s.Config.Cache.TTL, s.metrics),
	)

	s.services.userService = service.NewUserService(
		s.repos.userRepo,
		s.authProviders.Hasher,
		s.authProviders.JWTService,
		s.services.projectService,
		s.metrics,
	)

	s.services.resetService = service.NewPasswordResetService(
		s.repos.userRepo,
		s.authProviders.ResetTokens,
		s.authProviders.Hasher,
		s.authProviders.JWTService,
		emailSender,
		s.Config.App.FrontendURL,
		s.metrics,
	)

	s.services.portfolioService = service.NewPortfolioService(
		s.services.userService,
		s.services.projectService,
	)

	return nil
}

// setupHandlers initializes all HTTP request handlers.
func (s *Server) setupHandlers() error {
	s.Handlers = &Handlers{
		AuthHandler:          handlers.NewAuthHandler(s.services.authService),
		PasswordResetHandler: handlers.NewPasswordResetHandler(s.services.resetService),
		UserHandler:          handlers.NewUserHandler(s.services.userService),
		ProjectHandler:       handlers.NewProjectHandler(s.services.projectService, s.Config.Storage.MaxUploadSize),
		PortfolioHandler:     handlers.NewPortfolioHandler(s.services.portfolioService),
	}

	if s.Handlers.AuthHandler == nil {
		return fmt.Errorf("failed to initialize AuthHandler")
	}

	return nil
}

// Start starts the HTTP server and blocks until it fails or a shutdown
// signal (SIGINT, SIGTERM) arrives, in which case it shuts down gracefully.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Str("environment", s.Config.App.Environment).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.SetupMaintenanceTasks(); err != nil {
		return fmt.Errorf("failed to schedule maintenance tasks: %w", err)
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server. In-flight requests finish
// first, then the maintenance scheduler, the cache and the database
// connection are closed.
//
// Parameters:
//   - ctx: Context with timeout for the shutdown operation
//
// Returns:
//   - An error if the HTTP server does not stop within the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	s.stopMaintenanceTasks()

	middleware.LogAndContinueOnError(s.cache.Close(), "Failed to close cache client")

	s.Db.Close()
	log.Info().Msg("Database connection closed")

	return nil
}
