package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/skilledlink/skilledlink-backend/api/routes"
	"github.com/skilledlink/skilledlink-backend/internal/artisans"
	"github.com/skilledlink/skilledlink-backend/internal/auth"
	"github.com/skilledlink/skilledlink-backend/internal/bookings"
	"github.com/skilledlink/skilledlink-backend/internal/issues"
	"github.com/skilledlink/skilledlink-backend/internal/notifications"
	"github.com/skilledlink/skilledlink-backend/internal/reviews"
	"github.com/skilledlink/skilledlink-backend/internal/subscriptions"
	"github.com/skilledlink/skilledlink-backend/pkg/auth/session"
	"github.com/skilledlink/skilledlink-backend/pkg/config"
	"github.com/skilledlink/skilledlink-backend/pkg/db"
	"github.com/skilledlink/skilledlink-backend/pkg/geocode"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/migrate"
	"github.com/skilledlink/skilledlink-backend/pkg/paystack"
	"github.com/skilledlink/skilledlink-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	paystackClient, err := paystack.NewClient(cfg.Paystack.SecretKey, paystack.WithBaseURL(cfg.Paystack.BaseURL))
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
		os.Exit(1)
	}

	geoClient := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithTimeout(cfg.Geocode.Timeout),
	)
	geoResolver := geocode.NewResolver(geoClient, geocode.NewCache(cfg.Geocode.CacheSize))

	gormDB := dbClient.DB()
	authRepo := auth.NewRepository(gormDB)
	bookingsRepo := bookings.NewRepository(gormDB)

	notificationsService, err := notifications.NewService(notifications.NewRepository(gormDB), cfg.Notifications.DedupWindow)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(authRepo, sessionManager, notificationsService, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(
		subscriptions.NewRepository(gormDB),
		dbClient,
		authRepo,
		bookingsRepo,
		paystackClient,
		notificationsService,
		subscriptions.Config{
			PremiumAmountKobo: cfg.Subscriptions.PremiumAmountKobo,
			Currency:          cfg.Subscriptions.Currency,
			PeriodDays:        cfg.Subscriptions.PeriodDays,
			FreeMonthlyLimit:  cfg.Bookings.FreeMonthlyAcceptLimit,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	bookingsService, err := bookings.NewService(
		bookingsRepo,
		dbClient,
		authRepo,
		subscriptionsService,
		notificationsService,
		logg,
		cfg.Bookings.FreeMonthlyAcceptLimit,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	artisansService, err := artisans.NewService(artisans.NewRepository(gormDB), authRepo, geoResolver, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create artisans service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.NewRepository(gormDB), bookingsRepo, notificationsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	issuesService, err := issues.NewService(issues.NewRepository(gormDB), notificationsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create issues service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessionManager,
		Auth:          authService,
		Bookings:      bookingsService,
		Artisans:      artisansService,
		Reviews:       reviewsService,
		Issues:        issuesService,
		Notifications: notificationsService,
		Subscriptions: subscriptionsService,
		GeoResolver:   geoResolver,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

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
	case <-stopCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
