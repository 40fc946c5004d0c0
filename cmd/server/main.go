package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "gamenight-backend/internal/api/http"
	"gamenight-backend/internal/config"
	"gamenight-backend/internal/logger"
	"gamenight-backend/internal/repository/postgres"
	"gamenight-backend/internal/security"
	"gamenight-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Gamenight Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Run schema migrations
	migrator, err := postgres.NewMigrator(cfg.GetDatabaseConnectionString(), cfg.Database.MigrationsPath)
	if err != nil {
		logger.Error("Failed to create migrator", "error", err)
		log.Fatalf("Failed to create migrator: %v", err)
	}
	if err := migrator.Up(); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		log.Fatalf("Failed to run migrations: %v", err)
	}
	migrator.Close()
	logger.Info("Database schema up to date")

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	smsSvc := service.NewSMSService(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
	inviteSvc := service.NewInviteService(
		store.GameRepository,
		store.MemberRepository,
		store.InvitationRepository,
		store.RegistrationRepository,
		store.NotificationRepository,
		store.AuditRepository,
		emailSvc,
		smsSvc,
		cfg.Invites.BaseURL,
		int32(cfg.Invites.DefaultExpiryDays),
		cfg.Invites.DefaultCountryCode,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Initialize HTTP handlers
	authMiddleware := httpapi.NewAuthMiddleware(tokenManager)
	inviteHandler := httpapi.NewInviteHandler(inviteSvc)
	notificationHandler := httpapi.NewNotificationHandler(noteSvc)

	router := httpapi.NewRouter(authMiddleware, inviteHandler, notificationHandler)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
