package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/orokiipay/orokiipay/internal/app"
	"github.com/orokiipay/orokiipay/internal/audit"
	"github.com/orokiipay/orokiipay/internal/auth"
	"github.com/orokiipay/orokiipay/internal/navigation"
	"github.com/orokiipay/orokiipay/internal/observability"
	"github.com/orokiipay/orokiipay/internal/platform/cache"
	"github.com/orokiipay/orokiipay/internal/platform/db"
	"github.com/orokiipay/orokiipay/internal/rbac"
	"github.com/orokiipay/orokiipay/internal/shared"
	"github.com/orokiipay/orokiipay/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessions := shared.NewSessionManager(redisClient, cfg.SessionPrefix, cfg.SessionTTL)
	metrics := observability.NewMetrics()

	var enqueuer audit.Enqueuer
	var jobsClient *jobs.Client
	if cfg.AuditAsync {
		jobsClient = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		enqueuer = jobsClient
	}

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo, enqueuer, logger)

	rbacRepo := rbac.NewRepository(pool)
	rbacService := rbac.NewService(rbacRepo)
	rbacMiddleware := rbac.Middleware{
		Service:  rbacService,
		Audit:    auditService,
		Observer: metrics,
		Logger:   logger,
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessions)

	rbacHandler := rbac.NewHandler(logger, rbacService, auditService, rbacMiddleware)
	navigationHandler := navigation.NewHandler(logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessions,
		AuthHandler:       authHandler,
		RBACHandler:       rbacHandler,
		NavigationHandler: navigationHandler,
		RBACMiddleware:    rbacMiddleware,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
