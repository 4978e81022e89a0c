package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/geonotify/internal/config"
	"github.com/jwalitptl/geonotify/internal/geo"
	healthHandler "github.com/jwalitptl/geonotify/internal/handler/health"
	locationHandler "github.com/jwalitptl/geonotify/internal/handler/location"
	notificationHandler "github.com/jwalitptl/geonotify/internal/handler/notification"
	"github.com/jwalitptl/geonotify/internal/middleware"
	"github.com/jwalitptl/geonotify/internal/repository/postgres"
	"github.com/jwalitptl/geonotify/internal/router"
	locationService "github.com/jwalitptl/geonotify/internal/service/location"
	notificationService "github.com/jwalitptl/geonotify/internal/service/notification"
	placeService "github.com/jwalitptl/geonotify/internal/service/place"
	"github.com/jwalitptl/geonotify/pkg/logger"
	"github.com/jwalitptl/geonotify/pkg/messaging/redis"
	"github.com/jwalitptl/geonotify/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis broker
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	// Initialize metrics
	appMetrics := metrics.New("geonotify_api")
	if err := appMetrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	// Initialize repositories
	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	notificationRepo := postgres.NewNotificationRepository(baseRepo)
	historyRepo := postgres.NewLocationHistoryRepository(baseRepo)

	// Initialize external geo clients
	geocoder := geo.NewGeocoder(cfg.Geo)
	placesIndex := geo.NewPlacesIndex(cfg.Geo)
	geoRouter := geo.NewRouter(cfg.Geo)
	detailsLookup := geo.NewDetailsLookup(cfg.Geo)

	// Initialize services
	placeSvc := placeService.NewService(
		placesIndex,
		geoRouter,
		detailsLookup,
		placeService.NewCatalog(),
		cfg.Geo.SearchRadius,
		appLogger,
		appMetrics,
	)
	notificationSvc := notificationService.NewService(notificationRepo)
	dispatcher := notificationService.NewDispatcher(broker, notificationService.JobPolicy{
		MaxAttempts:    cfg.Delivery.MaxAttempts,
		InitialBackoff: cfg.Delivery.InitialBackoff,
	}, appLogger)
	locationSvc := locationService.NewService(
		userRepo,
		historyRepo,
		geocoder,
		placeSvc,
		notificationSvc,
		dispatcher,
		appLogger,
		appMetrics,
	)

	// Build router
	r := router.NewRouter(
		router.Config{
			RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:      cfg.RateLimit.Burst,
			RequestTimeout: middleware.TimeoutConfig{Duration: cfg.Server.RequestTimeout},
		},
		appLogger,
		healthHandler.NewHandler(db),
		locationHandler.NewHandler(locationSvc),
		notificationHandler.NewHandler(notificationSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}
