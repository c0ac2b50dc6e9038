package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/colmado-pos/internal/application/service"
	"github.com/sangkips/colmado-pos/internal/config"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	domainRepo "github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/internal/infrastructure/database"
	"github.com/sangkips/colmado-pos/internal/infrastructure/repository"
	"github.com/sangkips/colmado-pos/internal/infrastructure/session"
	"github.com/sangkips/colmado-pos/internal/presentation/http/handler"
	"github.com/sangkips/colmado-pos/internal/presentation/http/routes"
	"github.com/sangkips/colmado-pos/pkg/printer"
	"github.com/sangkips/colmado-pos/pkg/utils"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedDefaultData(db, cfg.Admin); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	sessions := openSessionStore(ctx, cfg)

	// Services
	settingsService := service.NewSettingsService(settingsRepo, cfg.Business)
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo, roleRepo)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	customerService := service.NewCustomerService(customerRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, productRepo, settingsService)
	checkoutService := service.NewCheckoutService(
		sessions,
		productRepo,
		customerRepo,
		invoiceService,
		settingsService,
		checkout.NewSimulatedTerminal(cfg.Checkout.TerminalStepDelay),
	)

	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		Device:  cfg.Printer.Device,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter, _ = printer.New(printer.Config{Type: "none"})
	}
	printerService := service.NewPrinterService(thermalPrinter, invoiceService, settingsService, cfg.Printer.Type)

	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Customer: handler.NewCustomerHandler(customerService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Settings: handler.NewSettingsHandler(settingsService),
		Printer:  handler.NewPrinterHandler(printerService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Stop:            ctx.Done(),
	})

	go purgeIdempotencyKeys(ctx, idempotencyRepo)

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
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func openDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		log.Printf("Using SQLite database at %s", cfg.SQLitePath)
		return database.NewSQLiteDB(cfg.SQLitePath)
	}
	return database.NewPostgresDB(cfg, debug)
}

// openSessionStore keeps open sales in Redis when configured so they
// survive restarts; otherwise they live in memory.
func openSessionStore(ctx context.Context, cfg *config.Config) domainRepo.SessionRepository {
	if cfg.Redis.Enabled() {
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			return session.NewRedisStore(client, cfg.Checkout.SessionTTL)
		}
		log.Printf("Warning: %v; keeping checkout sessions in memory", err)
	}
	return session.NewMemoryStore(cfg.Checkout.SessionTTL)
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.PurgeExpired(ctx, now)
			if err != nil {
				log.Printf("[idempotency] purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[idempotency] purged %d expired keys", n)
			}
		}
	}
}
