package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bawantha395/tcms-app-sub004/api/swagger"
	"github.com/bawantha395/tcms-app-sub004/internal/handler"
	"github.com/bawantha395/tcms-app-sub004/internal/middleware"
	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/internal/repository"
	"github.com/bawantha395/tcms-app-sub004/internal/service"
	"github.com/bawantha395/tcms-app-sub004/pkg/cache"
	"github.com/bawantha395/tcms-app-sub004/pkg/config"
	"github.com/bawantha395/tcms-app-sub004/pkg/database"
	"github.com/bawantha395/tcms-app-sub004/pkg/export"
	"github.com/bawantha395/tcms-app-sub004/pkg/jobs"
	"github.com/bawantha395/tcms-app-sub004/pkg/logger"
	corsmiddleware "github.com/bawantha395/tcms-app-sub004/pkg/middleware/cors"
	reqidmiddleware "github.com/bawantha395/tcms-app-sub004/pkg/middleware/requestid"
	"github.com/bawantha395/tcms-app-sub004/pkg/storage"
)

// @title TCMS Payments API
// @version 0.1.0
// @description Tuition class payment tracking and cash reconciliation
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Reconciliation.CacheTTL, logr, cfg.Reconciliation.CacheEnabled)
	}

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	sessionRepo := repository.NewCashSessionRepository(db)
	userRepo := repository.NewUserRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	classifier := service.NewCardClassifier()
	aggregator := service.NewTransactionAggregator(classifier)
	tracker := service.NewPaymentTrackingService(service.PaymentTrackingConfig{
		DefaultFreeDays:     cfg.Payments.DefaultFreeDays,
		EndingSoonThreshold: cfg.Payments.EndingSoonThreshold,
	}, logr)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "tcms-payments",
	})

	statusService := service.NewEnrollmentStatusService(enrollmentRepo, tracker, logr)

	reconciliationService := service.NewReconciliationService(
		transactionRepo, sessionRepo, enrollmentRepo,
		aggregator, tracker, cacheService, metricsService, logr,
		service.ReconciliationConfig{CacheTTL: cfg.Reconciliation.CacheTTL},
	)

	dashboardService := service.NewDashboardService(
		transactionRepo, enrollmentRepo, aggregator, tracker, cacheService, logr,
		service.DashboardServiceConfig{
			CacheTTL:   cfg.Dashboard.CacheTTL,
			ClassLimit: cfg.Payments.DashboardClassLimit,
		},
	)

	transactionService := service.NewTransactionService(
		transactionRepo, sessionRepo, classifier,
		reconciliationService, dashboardService, metricsService, nil, logr,
	)

	var exportJobService *service.ExportJobService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService := service.NewExportService(
			reconciliationService, exportStorage, signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
			logr, export.NewCSVExporter(), export.NewPDFExporter(),
		)
		worker := service.NewExportWorker(exportJobRepo, exportService, metricsService, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("reconciliation-exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportQueue.Start(ctx)

		exportJobService = service.NewExportJobService(
			exportJobRepo, exportQueue, exportService, metricsService, logr,
			service.ExportJobServiceConfig{
				ResultTTL:       cfg.Exports.SignedURLTTL,
				CleanupInterval: cfg.Exports.CleanupInterval,
				MaxRetries:      cfg.Exports.WorkerRetries,
			},
		)
		exportJobService.RecoverPendingJobs(ctx)
		exportJobService.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	metricsHandler := handler.NewMetricsHandler(metricsService)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authService)
	statusHandler := handler.NewPaymentStatusHandler(statusService)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	transactionHandler := handler.NewTransactionHandler(transactionService)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.GET("/enrollments/payment-status", statusHandler.StatusByClass)
	protected.GET("/enrollments/:id/payment-status", statusHandler.Status)

	protected.GET("/reconciliation/sessions/:id/report", reconciliationHandler.SessionReport)
	protected.GET("/reconciliation/sessions/:id/report/export", reconciliationHandler.ExportSessionReport)
	protected.GET("/reconciliation/daily",
		middleware.RequireRoles(models.RoleAdmin), reconciliationHandler.DailyReport)

	if cfg.Dashboard.Enabled {
		protected.GET("/dashboard/payments", dashboardHandler.Payments)
	}

	protected.POST("/transactions", transactionHandler.Create)
	protected.GET("/transactions", transactionHandler.List)

	if exportJobService != nil {
		exportHandler := handler.NewExportHandler(exportJobService)
		protected.POST("/exports/reconciliation", exportHandler.Create)
		protected.GET("/exports/:id", exportHandler.Status)
		// Download links carry their own signed token; no JWT required.
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
	if exportQueue != nil {
		exportQueue.Stop()
	}
}
