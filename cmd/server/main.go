package main

import (
	"log"
	"net/http"

	_ "cuprewards/docs" // swagger docs

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"cuprewards/internal/analytics"
	"cuprewards/internal/auth"
	"cuprewards/internal/cache"
	"cuprewards/internal/config"
	"cuprewards/internal/crypto"
	"cuprewards/internal/db"
	"cuprewards/internal/handler"
	"cuprewards/internal/jobs"
	"cuprewards/internal/logger"
	"cuprewards/internal/mailer"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
	"cuprewards/internal/router"
	"cuprewards/internal/service"
)

// @title Cup Rewards API
// @version 1.0
// @description Coffee-chain loyalty backend with QR-based redemptions, staff point of sale, and admin management.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.Environment)

	e := echo.New()
	e.Use(echomiddleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.PendingSignup{},
		&model.CustomerProfile{},
		&model.StaffProfile{},
		&model.StaffSite{},
		&model.Site{},
		&model.Transaction{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	pendingRepo := repository.NewPendingSignupRepository(gormDB)
	customerRepo := repository.NewCustomerProfileRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)
	staffRepo := repository.NewStaffRepository(gormDB)
	siteRepo := repository.NewSiteRepository(gormDB)

	// Initialize auth and crypto components
	tokens := auth.NewTokenService(cfg.AccessSecret, cfg.RefreshSecret, cfg.PendingSecret)
	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("cipher init: %v", err)
	}
	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	live := analytics.NewLiveCounters(cacheClient, appLog)

	// Initialize services
	signupService := service.NewSignupService(userRepo, pendingRepo, tokens, cipher, mail, appLog)
	authService := service.NewAuthService(userRepo, customerRepo, staffRepo, tokens, cipher, appLog)
	qrService := service.NewQRService(customerRepo)
	ledgerService := service.NewLedgerService(customerRepo, staffRepo, live, appLog)
	customerService := service.NewCustomerService(customerRepo, transactionRepo)
	staffService := service.NewStaffService(staffRepo, qrService, cipher)
	adminService := service.NewAdminService(userRepo, staffRepo, siteRepo, cipher, mail, live, cfg.FrontendURL)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(signupService, authService, cfg)
	customerHandler := handler.NewCustomerHandler(customerService, qrService)
	staffHandler := handler.NewStaffHandler(staffService, ledgerService)
	adminHandler := handler.NewAdminHandler(adminService)

	// Start cleanup jobs
	scheduler := jobs.NewScheduler(pendingRepo, customerRepo, appLog)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("scheduler start: %v", err)
	}
	defer scheduler.Stop()

	// Register routes
	router.Register(
		e,
		cfg,
		tokens,
		userRepo,
		authHandler,
		customerHandler,
		staffHandler,
		adminHandler,
	)

	appLog.Info().Str("port", cfg.ServerPort).Msg("starting server")

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
