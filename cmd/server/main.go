package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"notesaas/internal/caching"
	"notesaas/internal/common"
	"notesaas/internal/config"
	"notesaas/internal/handlers"
	"notesaas/internal/jobs/background"
	"notesaas/internal/logger"
	"notesaas/internal/middleware"
	"notesaas/internal/repositories"
	"notesaas/internal/services"
	"notesaas/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
		OutputPath:  "stdout",
	}); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Auth.GeneratedSecret {
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	noteRepo := repositories.NewNoteRepo(pool)

	// Redis is optional: without it there is no principal cache and no rate limit
	var cacheSvc caching.CacheService
	var principalCache services.PrincipalCache
	var cachePinger handlers.Pinger
	if cfg.Redis.Enabled {
		cacheSvc = caching.NewRedisCacheService(cfg.Redis)
		defer func() { _ = cacheSvc.Close() }()
		principalCache = cacheSvc
		cachePinger = cacheSvc
	}

	var storage services.MinioService
	if cfg.Storage.Enabled {
		storage, err = services.NewMinioService(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
		if err != nil {
			logger.Fatal("failed to initialize MinIO service", zap.Error(err))
		}
	}

	// Create services
	tokens := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	quotaSvc := services.NewQuotaService(noteRepo)
	identitySvc := services.NewIdentityService(tokens, userRepo, principalCache, cfg.Auth.PrincipalCacheTTL)
	authSvc := services.NewAuthService(userRepo, tokens)
	tenantSvc := services.NewTenantService(tenantRepo, userRepo, noteRepo, principalCache, cfg.Auth.FreeNoteLimit)
	userSvc := services.NewUserService(userRepo, principalCache, cfg.Auth.BcryptCost)
	noteSvc := services.NewNoteService(noteRepo, quotaSvc)
	exportSvc := services.NewExportService(storage, noteRepo, cfg.Storage.Bucket, cfg.Storage.PresignExpiry)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = common.HTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestContext())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{AllowOrigins: cfg.Server.CORSOrigins}))
	e.Use(echoMiddleware.SecureWithConfig(echoMiddleware.DefaultSecureConfig))
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.VersionHeader(cfg.App.Version))
	if cfg.RateLimit.Enabled && cacheSvc != nil {
		e.Use(middleware.RateLimit(cacheSvc, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	handlers.RegisterRoutes(e, &handlers.Routes{
		Auth:     handlers.NewAuthHandlers(authSvc),
		Tenants:  handlers.NewTenantHandlers(tenantSvc, exportSvc),
		Notes:    handlers.NewNoteHandlers(noteSvc),
		Users:    handlers.NewUserHandlers(userSvc),
		Health:   handlers.NewHealthHandlers(pool, cachePinger, cfg.App.Version),
		Identity: identitySvc,
		RBAC:     middleware.NewRBACMiddleware(services.NewRBACService()),
		Quota:    quotaSvc,
		Audit:    middleware.NewAuditMiddleware(logger.Get()),
	})

	var scheduler *background.JobScheduler
	if cfg.Jobs.Enabled {
		scheduler, err = background.NewJobScheduler(tenantRepo, cfg.Jobs.QuotaReconcileInterval)
		if err != nil {
			logger.Fatal("failed to create job scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Addr()),
			zap.String("version", cfg.App.Version),
			zap.String("environment", cfg.App.Environment))
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			logger.Error("scheduler shutdown failed", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
