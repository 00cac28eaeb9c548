package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kartik-parmar007/marketplace-backend/api/routes"
	"github.com/kartik-parmar007/marketplace-backend/internal/authz"
	"github.com/kartik-parmar007/marketplace-backend/internal/catalog"
	"github.com/kartik-parmar007/marketplace-backend/internal/directory"
	"github.com/kartik-parmar007/marketplace-backend/internal/uploads"
	"github.com/kartik-parmar007/marketplace-backend/pkg/config"
	"github.com/kartik-parmar007/marketplace-backend/pkg/db"
	"github.com/kartik-parmar007/marketplace-backend/pkg/env"
	"github.com/kartik-parmar007/marketplace-backend/pkg/identity"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
	"github.com/kartik-parmar007/marketplace-backend/pkg/metrics"
	"github.com/kartik-parmar007/marketplace-backend/pkg/migrate"
	"github.com/kartik-parmar007/marketplace-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis url not set, registration rate limiting disabled")
	}

	identityClient, err := identity.NewClient(cfg.Identity)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity client", err)
		os.Exit(1)
	}

	directoryService, err := directory.NewService(directory.NewRepository(dbClient.DB()), identityClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create directory service", err)
		os.Exit(1)
	}

	mediaStore, err := uploads.NewStorage(cfg.Media, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), directoryService, mediaStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	gate, err := authz.NewGate(cfg.Admin.Emails(), identityClient, directoryService)
	if err != nil {
		logg.Error(context.Background(), "failed to create authorization gate", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			collector,
			identityClient,
			gate,
			directoryService,
			catalogService,
			mediaStore,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
