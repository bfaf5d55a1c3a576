package app

import (
	"context"
	"fmt"

	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/config"
	"github.com/hogent/event-ticket-manager/middleware"
	"github.com/hogent/event-ticket-manager/repositories"
	"github.com/hogent/event-ticket-manager/repositories/postgres"
	"github.com/hogent/event-ticket-manager/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users      repositories.UserRepository
	Locations  repositories.LocationRepository
	Categories repositories.CategoryRepository
	Events     repositories.EventRepository
	Tickets    repositories.TicketRepository
	TxManager  repositories.TransactionManager

	// Auth
	Hasher auth.PasswordHasher
	Tokens *auth.TokenService
	Policy auth.AccessPolicy

	// Services
	AuthService     *services.AuthService
	UserService     *services.UserService
	LocationService *services.LocationService
	CategoryService *services.CategoryService
	EventService    *services.EventService
	TicketService   *services.TicketService

	// HTTP middleware
	SessionResolver *middleware.SessionResolver
	Guard           *middleware.Guard
	LoginThrottle   *middleware.LoginThrottle
}

// NewDependencies opens the database and wires up everything on top of it.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := factory.GetDB().PingContext(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: database ping failed: %w", err)
	}

	deps, err := NewDependenciesFromFactory(cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires everything over an already open
// database. Tests use it with a sqlmock-backed factory.
func NewDependenciesFromFactory(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initMiddleware(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Locations = repos.Locations
	d.Categories = repos.Categories
	d.Events = repos.Events
	d.Tickets = repos.Tickets
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	hasher, err := auth.NewArgon2Hasher(HashParams(cfg.Auth))
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.JWTIssuer,
		Audience:   cfg.Auth.JWTAudience,
		Expiration: cfg.Auth.JWTExpirationInterval,
		Leeway:     cfg.Auth.JWTLeeway,
	})
	if err != nil {
		return err
	}

	d.Hasher = hasher
	d.Tokens = tokens
	d.Policy = auth.AccessPolicy{AdminBypassOwnership: cfg.Auth.AdminBypassOwnership}

	d.Logger.Info("auth initialized",
		zap.Uint32("hash_memory_kib", cfg.Auth.HashMemoryCost),
		zap.Uint32("hash_time_cost", cfg.Auth.HashTimeCost),
		zap.Duration("token_ttl", cfg.Auth.JWTExpirationInterval),
		zap.Bool("admin_bypass_ownership", d.Policy.AdminBypassOwnership))
	return nil
}

func (d *Dependencies) initServices() error {
	authService, err := services.NewAuthService(d.Users, d.Hasher, d.Tokens, d.Logger)
	if err != nil {
		return err
	}

	d.AuthService = authService
	d.UserService = services.NewUserService(d.Users, d.Tickets, d.Hasher, d.Logger)
	d.LocationService = services.NewLocationService(d.Locations, d.Logger)
	d.CategoryService = services.NewCategoryService(d.Categories, d.Logger)
	d.EventService = services.NewEventService(d.Events, d.TxManager, d.Logger)
	d.TicketService = services.NewTicketService(d.Tickets, d.Events, d.Policy, d.Logger)
	return nil
}

func (d *Dependencies) initMiddleware(cfg *config.Config) {
	d.SessionResolver = middleware.NewSessionResolver(d.Tokens, d.Logger)
	d.Guard = middleware.NewGuard(middleware.NewRouteTable(), d.Policy, d.Logger)
	d.LoginThrottle = middleware.NewLoginThrottle(cfg.Auth.MaxDelay, d.Logger)
}

// HashParams maps the auth configuration onto argon2id parameters
func HashParams(cfg config.AuthConfig) auth.HashParams {
	return auth.HashParams{
		Memory:      cfg.HashMemoryCost,
		Time:        cfg.HashTimeCost,
		Parallelism: cfg.HashParallelism,
		SaltLength:  cfg.HashSaltLength,
		KeyLength:   cfg.HashLength,
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
