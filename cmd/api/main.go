package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ougajs-sys/easyflows-backend/api/routes"
	"github.com/ougajs-sys/easyflows-backend/internal/auth"
	"github.com/ougajs-sys/easyflows-backend/internal/clients"
	"github.com/ougajs-sys/easyflows-backend/internal/distribution"
	"github.com/ougajs-sys/easyflows-backend/internal/importer"
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
	clientsRepo := clients.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	presenceRepo := presence.NewRepository(dbClient.DB())
	scoresRepo := scores.NewRepository(dbClient.DB())
	runsRepo := distribution.NewRepository(dbClient.DB())

	clientsCache := clients.NewListCache(redisClient, logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:    usersRepo,
		RateLimiter: auth.NewRedisRateLimiter(redisClient),
		JWTConfig:   cfg.JWT,
		RateConfig:  cfg.AuthRateLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, scoresRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	importMetrics := metrics.NewImportMetrics(prometheus.DefaultRegisterer)
	importService, err := importer.NewService(importer.Params{
		Clients:    clientsRepo,
		Cache:      clientsCache,
		Logger:     logg,
		Metrics:    importMetrics,
		BatchSize:  cfg.Import.BatchSize,
		LookupSize: cfg.Import.LookupSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	router := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Gatherer:     prometheus.DefaultGatherer,
		AuthService:  authService,
		UsersService: usersService,
		OrdersSvc:    ordersService,
		OrdersRepo:   ordersRepo,
		ClientsRepo:  clientsRepo,
		ClientsCache: clientsCache,
		ImportSvc:    importService,
		DistSvc:      distService,
		DistRepo:     runsRepo,
		PresenceRepo: presenceRepo,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}
