package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ougajs-sys/easyflows-backend/internal/cron"
	"github.com/ougajs-sys/easyflows-backend/internal/distribution"
	"github.com/ougajs-sys/easyflows-backend/internal/notifications"
	"github.com/ougajs-sys/easyflows-backend/internal/orders"
	"github.com/ougajs-sys/easyflows-backend/internal/presence"
	"github.com/ougajs-sys/easyflows-backend/internal/scores"
	"github.com/ougajs-sys/easyflows-backend/internal/users"
	"github.com/ougajs-sys/easyflows-backend/pkg/config"
	"github.com/ougajs-sys/easyflows-backend/pkg/db"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
	"github.com/ougajs-sys/easyflows-backend/pkg/metrics"
	"github.com/ougajs-sys/easyflows-backend/pkg/migrate"
	"github.com/ougajs-sys/easyflows-backend/pkg/redis"
)

const lockKeyFormat = "ef:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	presenceRepo := presence.NewRepository(dbClient.DB())
	scoresRepo := scores.NewRepository(dbClient.DB())
	runsRepo := distribution.NewRepository(dbClient.DB())

	var sender notifications.SMSSender
	if cfg.SMS.Enabled() {
		sender, err = notifications.NewHTTPSMSSender(cfg.SMS)
		if err != nil {
			logg.Error(context.Background(), "failed to create sms sender", err)
			os.Exit(1)
		}
	}
	notifier, err := notifications.NewService(usersRepo, sender, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	distService, err := distribution.NewService(distribution.Params{
		Orders:   ordersRepo,
		Presence: presenceRepo,
		Scores:   scoresRepo,
		Runs:     runsRepo,
		Notifier: notifier,
		Logger:   logg,
		Config:   cfg.Distribution,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create distribution service", err)
		os.Exit(1)
	}

	distJob, err := cron.NewDistributionJob(distService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create distribution job", err)
		os.Exit(1)
	}
	cleanupJob, err := cron.NewPresenceCleanupJob(presenceRepo, logg, cfg.Presence.StaleAfter, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create presence cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(distJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Distribution.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
