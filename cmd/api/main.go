package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/pim-console/api/controllers"
	"github.com/angelmondragon/pim-console/api/routes"
	"github.com/angelmondragon/pim-console/internal/cron"
	"github.com/angelmondragon/pim-console/internal/gateway"
	"github.com/angelmondragon/pim-console/internal/productdetail"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/pkg/auth/session"
	"github.com/angelmondragon/pim-console/pkg/config"
	"github.com/angelmondragon/pim-console/pkg/logger"
	"github.com/angelmondragon/pim-console/pkg/metrics"
	"github.com/angelmondragon/pim-console/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "pim-console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pim-console",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	sessionManager, err := session.NewManager(redisClient, cfg.Redis.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gatewayMetrics := metrics.NewGatewayMetrics(promRegistry)
	actionMetrics := metrics.NewActionMetrics(promRegistry)
	jobMetrics := metrics.NewJobMetrics(promRegistry)

	mediaSource := products.FixtureMedia{}
	if cfg.Detail.FixtureMedia {
		mediaSource = products.DefaultFixtureMedia()
	}

	registry, err := productdetail.NewRegistry(productdetail.Deps{
		Media:      mediaSource,
		References: products.DefaultFixtureReferences(),
		MediaCfg:   cfg.Media,
		Strict:     cfg.Detail.StrictLoad,
		BusSize:    cfg.Detail.NotificationBuffer,
		Metrics:    actionMetrics,
		Logger:     logg,
	}, cfg.Detail.IdleTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create detail registry", err)
		os.Exit(1)
	}

	gatewayClient, err := gateway.New(cfg.Upstream.BaseURL, sessionManager,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		gateway.WithRateLimit(cfg.Upstream.RateLimit, cfg.Upstream.Burst),
		gateway.WithMetrics(gatewayMetrics),
		gateway.WithLogger(logg),
		gateway.WithTerminationHook(func(sessionID, _ string) {
			registry.CloseOwner(sessionID)
		}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create upstream gateway", err)
		os.Exit(1)
	}

	jobs := cron.NewRegistry()
	jobs.Register(cron.FuncJob("detail-session-sweep", func(ctx context.Context) error {
		if closed := registry.Sweep(); closed > 0 {
			logg.Info(logg.WithField(ctx, "closed", closed), "idle detail sessions closed")
		}
		return nil
	}), cfg.Detail.SweepInterval)
	scheduler, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Metrics:  jobMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"port": cfg.App.Port,
	})

	go func() {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "scheduler stopped unexpectedly", err)
		}
	}()

	router := routes.NewRouter(
		cfg,
		logg,
		redisClient,
		sessionManager,
		registry,
		controllers.GatewayUpstream{Client: gatewayClient},
		promRegistry,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting console api")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server failed", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down console api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}
