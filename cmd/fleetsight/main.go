package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetsight/fleetsight/internal/app"
	"github.com/fleetsight/fleetsight/internal/auth"
	"github.com/fleetsight/fleetsight/internal/authz"
	"github.com/fleetsight/fleetsight/internal/fleet"
	"github.com/fleetsight/fleetsight/internal/observability"
	"github.com/fleetsight/fleetsight/internal/permissions"
	"github.com/fleetsight/fleetsight/internal/platform/cache"
	"github.com/fleetsight/fleetsight/internal/platform/db"
	"github.com/fleetsight/fleetsight/internal/shared"
	"github.com/fleetsight/fleetsight/internal/users"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "fleetsight_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)

	permissionsRepo := permissions.NewRepository(pool)
	permissionsCache := permissions.NewTTLCache(redisClient, cfg.PermissionCacheTTL)
	permissionsService := permissions.NewService(permissionsRepo, permissionsCache, logger)

	resolver := authz.NewResolver(permissionsService, logger)
	guard := authz.Guard{
		Principals: usersService,
		Resolver:   resolver,
		Overrides:  permissionsService,
		Logger:     logger,
	}

	fleetService := fleet.NewService(fleet.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Metrics:            observability.NewMetrics(),
		Guard:              guard,
		AuthHandler:        auth.NewHandler(auth.NewService(usersRepo), sessionManager, csrfManager, logger),
		AccessHandler:      authz.NewHandler(),
		FleetHandler:       fleet.NewHandler(fleetService, logger),
		PermissionsHandler: permissions.NewHandler(permissionsService, logger),
		UsersHandler:       users.NewHandler(usersService, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
