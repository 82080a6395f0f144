package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vantage-erp/vantage-erp/internal/app"
	"github.com/vantage-erp/vantage-erp/internal/auth"
	"github.com/vantage-erp/vantage-erp/internal/finance"
	"github.com/vantage-erp/vantage-erp/internal/inventory"
	"github.com/vantage-erp/vantage-erp/internal/observability"
	"github.com/vantage-erp/vantage-erp/internal/platform/cache"
	"github.com/vantage-erp/vantage-erp/internal/platform/db"
	"github.com/vantage-erp/vantage-erp/internal/rolereq"
	"github.com/vantage-erp/vantage-erp/internal/shared"
	"github.com/vantage-erp/vantage-erp/internal/support"
	"github.com/vantage-erp/vantage-erp/internal/users"
	"github.com/vantage-erp/vantage-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, derived caches disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	mailQueue, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailQueue.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	tokens := auth.NewTokenManager(cfg.AuthSecret, cfg.AuthTokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, logger)
	authHandler := auth.NewHandler(logger, authService)

	derivedCache := cache.NewJSONCache(redisClient, "vantage:derived:version", cfg.ForecastCacheTTL)
	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, derivedCache, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo, auditLogger, logger)
	financeHandler := finance.NewHandler(logger, financeService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, logger)
	usersHandler := users.NewHandler(logger, usersService)

	supportRepo := support.NewRepository(pool)
	supportService := support.NewService(supportRepo, mailQueue, cfg.SupportInbox, logger)
	supportHandler := support.NewHandler(logger, supportService)

	rolereqRepo := rolereq.NewRepository(pool)
	rolereqService := rolereq.NewService(rolereqRepo, authRepo, mailQueue, auditLogger, logger)
	rolereqHandler := rolereq.NewHandler(logger, rolereqService)

	metrics := observability.NewMetrics()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      authHandler,
		InventoryHandler: inventoryHandler,
		FinanceHandler:   financeHandler,
		UsersHandler:     usersHandler,
		SupportHandler:   supportHandler,
		RoleReqHandler:   rolereqHandler,
		JobHandler:       jobHandler,
		Pool:             pool,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
