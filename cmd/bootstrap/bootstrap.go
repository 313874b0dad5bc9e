package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospicloud/config"
	deliveryHttp "hospicloud/internal/delivery/http"
	"hospicloud/internal/infrastructure/cache"
	"hospicloud/internal/infrastructure/database"
	"hospicloud/internal/infrastructure/identity"
	"hospicloud/internal/infrastructure/mail"
	"hospicloud/internal/service"
	"hospicloud/pkg/jwt"
	"hospicloud/pkg/metrics"
	"hospicloud/pkg/password"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Provisioner service.IdentityProvisioner
	Services    []string
}

// New creates a new App serving the given services with all dependencies initialized
func New(services []string) (*App, error) {
	app := &App{Services: services}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Location, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := database.Migrate(db, cfg.DB.Migrations, database.MigrationURL(cfg.DB), log); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	hasher := password.NewBcryptHasher(cfg.Identity.BcryptCost)
	provider := identity.NewRedisProvider(redisClient, jwt.NewJWTService(cfg.JWT), hasher, log)

	handler, provisioner := NewHTTPHandler(services, Dependencies{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Provider: provider,
		Hasher:   hasher,
		Mailer:   mail.NewMailer(cfg.SMTP, log),
		Metrics:  metrics.NewMetrics("hospicloud", ""),
	})
	app.Provisioner = provisioner

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// Run starts the identity provisioner and the HTTP server and handles graceful shutdown
func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pending identities are only created by the users service.
	runProvisioner := app.Provisioner != nil && !app.Config.Identity.Bypass && app.serves(deliveryHttp.ServiceUsers)
	if runProvisioner {
		app.Provisioner.Start(ctx)
	}

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown(runProvisioner)
}

func (app *App) serves(name string) bool {
	for _, s := range app.Services {
		if s == name {
			return true
		}
	}
	return false
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown(stopProvisioner bool) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	if stopProvisioner {
		app.Provisioner.Stop()
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

// Migrate brings the schema up with strategy ("sql" or "auto") and exits.
func Migrate(strategy string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg.App.LogLevel)

	if strategy == "" {
		strategy = cfg.DB.Migrations
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Location, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	return database.Migrate(db, strategy, database.MigrationURL(cfg.DB), log)
}
