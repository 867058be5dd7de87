package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/tailingsiq/tailingsiq-engine/pkg/ai"
	"github.com/tailingsiq/tailingsiq-engine/pkg/auth"
	"github.com/tailingsiq/tailingsiq-engine/pkg/config"
	"github.com/tailingsiq/tailingsiq-engine/pkg/database"
	"github.com/tailingsiq/tailingsiq-engine/pkg/handlers"
	"github.com/tailingsiq/tailingsiq-engine/pkg/logging"
	"github.com/tailingsiq/tailingsiq-engine/pkg/middleware"
	"github.com/tailingsiq/tailingsiq-engine/pkg/repositories"
	"github.com/tailingsiq/tailingsiq-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx := context.Background()

	// Run migrations over database/sql, then open the pgx pool for serving.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	facilityRepo := repositories.NewFacilityRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	monitoringRepo := repositories.NewMonitoringRepository(db)
	complianceRepo := repositories.NewComplianceRepository(db)
	queryHistoryRepo := repositories.NewQueryHistoryRepository(db)

	// Auth
	tokens := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.TokenTTL())
	cookieSettings := auth.DeriveCookieSettings(cfg.BaseURL)
	authMiddleware := auth.NewMiddleware(tokens, cookieSettings, logger)

	// Services
	authService := services.NewAuthService(userRepo, tokens, logger)
	queryService := services.NewQueryService(ai.NewKeywordResponder(), queryHistoryRepo, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, cookieSettings, cfg.Auth.TokenTTL(), logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewFacilityHandler(facilityRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewDocumentHandler(documentRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewMonitoringHandler(monitoringRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewComplianceHandler(complianceRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewQueryHandler(queryService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting tailingsiq-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
