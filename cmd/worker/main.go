package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/fleetsight/fleetsight/internal/app"
	jobmetrics "github.com/fleetsight/fleetsight/internal/jobs"
	"github.com/fleetsight/fleetsight/internal/permissions"
	"github.com/fleetsight/fleetsight/internal/platform/cache"
	"github.com/fleetsight/fleetsight/internal/platform/db"
	"github.com/fleetsight/fleetsight/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	permissionsService := permissions.NewService(
		permissions.NewRepository(pool),
		permissions.NewTTLCache(redisClient, cfg.PermissionCacheTTL),
		logger,
	)

	refreshTask, err := jobs.NewAccessRefreshTask()
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAccessRefresh, Handler: jobs.NewAccessRefreshHandler(permissionsService, jobmetrics.NewMetrics(nil), logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.AccessRefreshCron, Task: refreshTask},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}
