package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "gearshare-backend/internal/api/http"
	"gearshare-backend/internal/config"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository/postgres"
	"gearshare-backend/internal/security"
	"gearshare-backend/internal/service"
	"gearshare-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting GearShare Settlement Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	var photoStorage storage.Storage
	if cfg.Storage.Type == "" || cfg.Storage.Type == "mock" {
		logger.Info("Using mock storage (local filesystem)", "upload_dir", cfg.Storage.UploadDir)
		mockStorage, err := storage.NewMockStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			logger.Error("Failed to initialize mock storage", "error", err)
			log.Fatalf("Failed to initialize mock storage: %v", err)
		}
		photoStorage = mockStorage
	} else {
		logger.Error("Unsupported storage type", "type", cfg.Storage.Type)
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}

	emailSvc := service.NewEmailService(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.FromEmail,
		cfg.SendGrid.FromName,
	)

	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.BookingRepository,
		store.DepositRepository,
		store.ExtensionRepository,
		store.GearRepository,
		store.NotificationRepository,
		store.IdentityRepository,
		emailSvc,
	)
	returnSvc := service.NewReturnService(
		store.RentalRepository,
		store.DepositRepository,
		store.ReviewRepository,
		store.GearRepository,
		rentalSvc,
		store.NotificationRepository,
		store.IdentityRepository,
		emailSvc,
	)
	depositSvc := service.NewDepositService(
		store.RentalRepository,
		store.DepositRepository,
		store.GearRepository,
		store.NotificationRepository,
		store.IdentityRepository,
		emailSvc,
	)
	extensionSvc := service.NewExtensionService(
		store.RentalRepository,
		store.ExtensionRepository,
		store.GearRepository,
		store.NotificationRepository,
		store.IdentityRepository,
		emailSvc,
	)
	payoutSvc := service.NewPayoutService(
		store.PayoutRepository,
		store.NotificationRepository,
		store.IdentityRepository,
		emailSvc,
		cfg.FeeRate(),
		cfg.Payout.MinimumBatchCents,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Tokens:       tokenManager,
		RentalSvc:    rentalSvc,
		ReturnSvc:    returnSvc,
		DepositSvc:   depositSvc,
		ExtensionSvc: extensionSvc,
		PayoutSvc:    payoutSvc,
		NoteSvc:      noteSvc,
		Storage:      photoStorage,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
