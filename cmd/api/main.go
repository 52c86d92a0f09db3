package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/config"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/database"
	"github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/handler"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/middleware"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/routes"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/email"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/oauth"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/printer"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database, cfg.App.Debug && cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db, cfg.Admin); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
		cfg.JWT.ApprovalExpiry,
	)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	refs := repository.NewReferenceChecker(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	billRepo := repository.NewBillRepository(db)
	tableRepo := repository.NewTableRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	handoverRepo := repository.NewHandoverRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	printerSettingRepo := repository.NewPrinterSettingRepository(db)
	masterRepos := service.MasterRepositories{
		Countries:            repository.NewMasterRepository[entity.Country](db),
		States:               repository.NewMasterRepository[entity.State](db),
		Cities:               repository.NewMasterRepository[entity.City](db),
		Brands:               repository.NewMasterRepository[entity.Brand](db),
		Hotels:               repository.NewMasterRepository[entity.Hotel](db),
		Outlets:              repository.NewMasterRepository[entity.Outlet](db),
		Departments:          repository.NewMasterRepository[entity.Department](db),
		Tables:               repository.NewMasterRepository[entity.DiningTable](db),
		TaxGroups:            repository.NewMasterRepository[entity.TaxGroup](db),
		KitchenMainGroups:    repository.NewMasterRepository[entity.KitchenMainGroup](db),
		KitchenCategories:    repository.NewMasterRepository[entity.KitchenCategory](db),
		KitchenSubCategories: repository.NewMasterRepository[entity.KitchenSubCategory](db),
		MenuItems:            repository.NewMasterRepository[entity.MenuItem](db),
		Units:                repository.NewMasterRepository[entity.Unit](db),
		Warehouses:           repository.NewMasterRepository[entity.Warehouse](db),
		Designations:         repository.NewMasterRepository[entity.Designation](db),
		UserTypes:            repository.NewMasterRepository[entity.UserType](db),
		Customers:            repository.NewMasterRepository[entity.Customer](db),
		PaymentModes:         repository.NewMasterRepository[entity.PaymentMode](db),
		PrinterSettings:      repository.NewMasterRepository[entity.PrinterSetting](db),
	}

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})

	// Initialize Google OAuth service
	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Initialize print spooler
	spooler, err := printer.NewSpooler(cfg.Printer.Spooler, cfg.Printer.AMQPURL, cfg.Printer.AMQPQueue)
	if err != nil {
		log.Printf("Warning: Failed to initialize %q spooler, printing disabled: %v", cfg.Printer.Spooler, err)
		spooler = printer.NewNullSpooler()
	}

	// Kitchen display hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, googleOAuthService)
	userService := service.NewUserService(tx, userRepo, roleRepo, permissionRepo, refs)
	masterServices := service.NewMasterServices(masterRepos, refs, billRepo)
	taxService := service.NewTaxService(masterRepos.Outlets, masterRepos.Departments, masterRepos.TaxGroups)
	printerService := service.NewPrinterService(spooler, printerSettingRepo, billRepo, masterRepos.Outlets, userRepo, cfg.Printer.PaperWidth)
	billingService := service.NewBillingService(service.BillingDeps{
		Transactor:      tx,
		BillRepo:        billRepo,
		TableRepo:       tableRepo,
		SettlementRepo:  settlementRepo,
		MenuItemRepo:    masterRepos.MenuItems,
		PaymentModeRepo: masterRepos.PaymentModes,
		OutletRepo:      masterRepos.Outlets,
		TaxService:      taxService,
		PrinterService:  printerService,
		Events:          hub,
		JWTManager:      jwtManager,
	})
	settlementService := service.NewSettlementService(tx, settlementRepo, billRepo, masterRepos.PaymentModes)
	handoverService := service.NewHandoverService(handoverRepo, userRepo, masterRepos.Outlets, masterRepos.PaymentModes, emailService, cfg.Handover.ReportRecipients)
	dashboardService := service.NewDashboardService(handoverRepo, billRepo, masterRepos.Tables)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService, googleOAuthService),
		User:       handler.NewUserHandler(userService),
		Bill:       handler.NewBillHandler(billingService),
		Settlement: handler.NewSettlementHandler(settlementService),
		Handover:   handler.NewHandoverHandler(handoverService),
		Printer:    handler.NewPrinterHandler(printerService, billingService),
		Tax:        handler.NewTaxHandler(taxService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Kitchen:    handler.NewKitchenHandler(hub, jwtManager),
		Masters:    masterServices,
	}

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	go rateLimiter.Run(ctx)
	go middleware.PurgeExpiredKeys(ctx, idempotencyRepo, time.Hour)

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		OutletRepo:      masterRepos.Outlets,
		RateLimiter:     rateLimiter,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s, database: %s, spooler: %s", cfg.App.Env, db.Dialector.Name(), spooler.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Let in-flight tickets reach the spooler before closing it
	printerService.Wait()
	if err := spooler.Close(); err != nil {
		log.Printf("Failed to close spooler: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server exited")
}
