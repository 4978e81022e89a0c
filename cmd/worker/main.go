package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/geonotify/internal/config"
	"github.com/jwalitptl/geonotify/internal/email"
	"github.com/jwalitptl/geonotify/internal/model"
	"github.com/jwalitptl/geonotify/internal/repository/postgres"
	notificationService "github.com/jwalitptl/geonotify/internal/service/notification"
	"github.com/jwalitptl/geonotify/internal/sms"
	"github.com/jwalitptl/geonotify/internal/worker"
	"github.com/jwalitptl/geonotify/pkg/logger"
	"github.com/jwalitptl/geonotify/pkg/messaging/redis"
	"github.com/jwalitptl/geonotify/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

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

	appMetrics := metrics.New("geonotify_worker")
	if err := appMetrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	notificationRepo := postgres.NewNotificationRepository(baseRepo)
	notificationSvc := notificationService.NewService(notificationRepo)

	policy := notificationService.JobPolicy{
		MaxAttempts:    cfg.Delivery.MaxAttempts,
		InitialBackoff: cfg.Delivery.InitialBackoff,
	}
	renderer := worker.NewRenderer()

	emailWorker := worker.NewChannelWorker(
		model.ChannelEmail,
		broker,
		userRepo,
		notificationSvc,
		worker.NewEmailSender(email.NewSMTPService(cfg.Email), renderer),
		policy,
		worker.NewHistory(cfg.Delivery.CompletedHistory, cfg.Delivery.FailedHistory),
		appLogger,
		appMetrics,
	)
	smsWorker := worker.NewChannelWorker(
		model.ChannelSMS,
		broker,
		userRepo,
		notificationSvc,
		worker.NewSMSSender(sms.NewGatewayClient(cfg.SMS), renderer),
		policy,
		worker.NewHistory(cfg.Delivery.CompletedHistory, cfg.Delivery.FailedHistory),
		appLogger,
		appMetrics,
	)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("shutting down delivery workers")
		cancel()
	}()

	// One independent consumer per channel: an outage on one channel
	// must not block the other.
	var wg sync.WaitGroup
	for _, w := range []*worker.ChannelWorker{emailWorker, smsWorker} {
		wg.Add(1)
		go func(w *worker.ChannelWorker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				appLogger.Error(err, "channel worker failed")
			}
		}(w)
	}
	wg.Wait()
}

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
