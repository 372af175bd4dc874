package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/config"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/controller"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/db"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/router"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/scheduler"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/storage"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/mailer"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/payment/razorpay"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting GST invoicing server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	database, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Optional infrastructure. Interfaces stay nil when a backend is off.
	var (
		tokenStore service.TokenStore
		subCache   service.SubscriptionCache
		redisPing  controller.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, sign-out revocation and plan cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redisClient.Close()
			tokenStore, subCache, redisPing = redisClient, redisClient, redisClient
		}
	}

	var documentStore service.DocumentStore
	if cfg.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			logger.Warn("S3 unavailable, invoice archiving disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			documentStore = s3Storage
		}
	}

	var sender mailer.Sender = mailer.NewLogSender()
	if cfg.Mail.ServerToken != "" {
		postmarkSender, err := mailer.NewPostmarkSender(mailer.Config{
			ServerToken:  cfg.Mail.ServerToken,
			AccountToken: cfg.Mail.AccountToken,
			From:         cfg.Mail.From,
			ReplyTo:      cfg.Mail.ReplyTo,
		})
		if err != nil {
			logger.Fatal("Failed to configure Postmark", err)
		}
		sender = postmarkSender
	} else {
		logger.Warn("POSTMARK_SERVER_TOKEN not set, emails will only be logged")
	}

	gateway, err := razorpay.NewClient(razorpay.Config{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		BaseURL:       cfg.Razorpay.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to configure Razorpay", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	resetRepo := repository.NewPasswordResetRepository(database)
	businessRepo := repository.NewBusinessRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	itemRepo := repository.NewItemRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	emailLogRepo := repository.NewEmailLogRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)

	// Initialize services
	authService := service.NewAuthService(database, userRepo, resetRepo, tokenStore, sender, service.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		AccessExpiry:  cfg.JWT.AccessTokenExpiry,
		RefreshExpiry: cfg.JWT.RefreshTokenExpiry,
		AppURL:        cfg.Server.AppURL,
	})
	businessService := service.NewBusinessService(database, businessRepo)
	customerService := service.NewCustomerService(customerRepo)
	itemService := service.NewItemService(itemRepo)
	invoiceService := service.NewInvoiceService(database, invoiceRepo, businessRepo, customerRepo, itemRepo)
	exportService := service.NewExportService(invoiceService, itemService, documentStore)
	emailService := service.NewEmailService(invoiceService, invoiceRepo, emailLogRepo, sender, cfg.Email.MaxRetries)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, gateway, subCache)

	// Initialize controllers
	controllers := router.Controllers{
		Auth:         controller.NewAuthController(authService, cfg.Server.Environment == "production"),
		Business:     controller.NewBusinessController(businessService),
		Customer:     controller.NewCustomerController(customerService),
		Item:         controller.NewItemController(itemService, exportService),
		Invoice:      controller.NewInvoiceController(invoiceService, exportService, emailService),
		Analytics:    controller.NewAnalyticsController(invoiceService, exportService),
		Subscription: controller.NewSubscriptionController(subscriptionService),
		Page:         controller.NewPageController(authService, invoiceService, subscriptionService),
		Health: controller.NewHealthController(map[string]controller.Pinger{
			"database": controller.PingerFunc(func(ctx context.Context) error { return db.Ping(ctx, database) }),
			"redis":    redisPing,
		}),
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	engine := router.NewRouter(controllers, authMiddleware, subscriptionService, cfg).Setup()

	if cfg.Scheduler.Enabled {
		housekeeping := scheduler.NewHousekeepingScheduler(cfg.Scheduler.Spec, subscriptionService, invoiceRepo, resetRepo)
		if err := housekeeping.Start(); err != nil {
			logger.Fatal("Failed to start housekeeping scheduler", err)
		}
		defer housekeeping.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	logger.Info("Server stopped successfully")
}
