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

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/api"
	"github.com/seo-optimizer/contentscore/config"
	"github.com/seo-optimizer/contentscore/logging"
	"github.com/seo-optimizer/contentscore/metrics"
	"github.com/seo-optimizer/contentscore/middleware"
	"github.com/seo-optimizer/contentscore/page"
	"github.com/seo-optimizer/contentscore/stats"
)

const serviceName = "contentscore"

func initTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	logger.Info("contentscore service initializing", "site_url", cfg.SiteURL, "dev_mode", cfg.DevMode)

	tp := initTracer()
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer", "error", err)
		}
	}()

	statsStorage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		logger.Error("failed to initialize statistics storage", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}

	m := metrics.New(nil)

	fetcher := page.NewFetcher(page.Options{
		Timeout:  cfg.FetchTimeout,
		CacheTTL: cfg.FetchCacheTTL,
		Stats:    statsStorage,
		Metrics:  m,
	})
	defer fetcher.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	traffic := stats.NewTraffic()

	handler := api.NewHandler(api.Deps{
		Analyzer:    analyzer.New(analyzer.Config{SiteURL: cfg.SiteURL}),
		Fetcher:     fetcher,
		Stats:       statsStorage,
		Traffic:     traffic,
		Metrics:     m,
		RateLimiter: rateLimiter,
		Logger:      logger,
		DevMode:     cfg.DevMode,
	})

	maintenanceDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rateLimiter.Prune(10 * time.Minute)
				pruned := traffic.PruneVisitors(24 * time.Hour)
				statsStorage.Cleanup(12)
				logger.Debug("maintenance done", "visitors_pruned", pruned)
			case <-maintenanceDone:
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	close(maintenanceDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := statsStorage.Shutdown(); err != nil {
		logger.Error("failed to flush statistics", "error", err)
	}

	logger.Info("server stopped")
}
