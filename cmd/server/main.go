package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"pledgeboard/internal/captcha"
	"pledgeboard/internal/country"
	pledgehandler "pledgeboard/internal/pledge/handler"
	"pledgeboard/internal/pledge/service"
	"pledgeboard/internal/pledge/store"
	"pledgeboard/internal/platform/config"
	"pledgeboard/internal/platform/httpserver"
	"pledgeboard/internal/platform/logger"
	"pledgeboard/internal/platform/metrics"
	"pledgeboard/internal/platform/middleware"
	platformredis "pledgeboard/internal/platform/redis"
	httptransport "pledgeboard/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	catalog, err := country.Load(cfg.CountriesPath)
	if err != nil {
		log.Error("failed to load country catalog", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	pledgeStore := store.NewRedis(redisClient.Client)
	pledgeService := service.New(catalog, pledgeStore)
	captchaClient := captcha.New(cfg.HcaptchaSecret)
	appMetrics := metrics.New()
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PledgesPerSecond, cfg.RateLimit.Burst)

	handler := pledgehandler.New(pledgeService, captchaClient, log, appMetrics, rateLimiter)
	router := httptransport.NewRouter(httptransport.Options{
		Logger:        log,
		Pledges:       handler,
		Health:        redisClient,
		AllowedOrigin: cfg.HostName,
		StaticPath:    cfg.StaticPath,
	})

	srv := httpserver.New(cfg.Addr(), router)

	log.Info("starting pledgeboard",
		"addr", cfg.Addr(),
		"countries", catalog.Len(),
		"static_path", cfg.StaticPath,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
