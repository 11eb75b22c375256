package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/adapter/breaker"
	"github.com/user/catalog-webhook/internal/adapter/chromedp_fetcher"
	"github.com/user/catalog-webhook/internal/adapter/goquery_extractor"
	"github.com/user/catalog-webhook/internal/adapter/httpfetch"
	"github.com/user/catalog-webhook/internal/delivery/http/handler"
	"github.com/user/catalog-webhook/internal/delivery/http/router"
	"github.com/user/catalog-webhook/internal/delivery/http/server"
	"github.com/user/catalog-webhook/internal/proxy"
	"github.com/user/catalog-webhook/internal/repository"
	"github.com/user/catalog-webhook/internal/usecase"
	"github.com/user/catalog-webhook/pkg/config"
	"github.com/user/catalog-webhook/pkg/logger"
	"github.com/user/catalog-webhook/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("could not build logger", zap.Error(err))
	}

	err = run(cfg, log, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		log.Error("server stopped", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until a signal arrives or the listener fails. Deferred
// cleanup runs on every return path.
func run(cfg *config.Config, log *zap.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) error {
	// --- Metrics ---
	m := metrics.New(reg)

	// --- Fetcher ---
	agents, err := proxy.NewManager(cfg.Proxies, cfg.UserAgents)
	if err != nil {
		return fmt.Errorf("invalid proxy configuration: %w", err)
	}

	var fetcher repository.PageFetcher
	switch cfg.Fetcher {
	case "browser":
		browser := chromedp_fetcher.NewChromedpFetcher(cfg.FetchTimeout, agents, log)
		defer browser.Close()
		fetcher = browser
	case "http", "":
		fetcher = httpfetch.NewHTTPFetcher(cfg.FetchTimeout, agents, log)
	default:
		return fmt.Errorf("unknown fetcher %q", cfg.Fetcher)
	}
	guarded := breaker.NewFetcher(fetcher, breaker.Config{
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerTimeout,
	}, m, log)

	// --- Use Cases ---
	builder, err := usecase.NewQueryBuilder(cfg.SearchEndpoint, cfg.SearchParam)
	if err != nil {
		return fmt.Errorf("invalid search endpoint: %w", err)
	}
	extractor := goquery_extractor.NewExtractor(goquery_extractor.Selectors{
		Row:     cfg.RowSelector,
		Link:    cfg.LinkSelector,
		Analyst: cfg.AnalystSelector,
	}, log)
	searcher := usecase.NewSearchUseCase(builder, guarded, extractor, m, log)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(searcher, handler.Options{
		ChatDefaultCount:   cfg.ChatDefaultCount,
		VoiceSearchLimit:   cfg.VoiceSearchLimit,
		VoiceSpokenResults: cfg.VoiceSpokenResults,
		SourceID:           cfg.SourceID,
		CircuitState:       func() string { return guarded.State().String() },
	}, log)
	requestTimeout := cfg.FetchTimeout + 5*time.Second
	httpRouter := router.New(apiHandler, m, gatherer, log, requestTimeout)
	srv := server.New(cfg.ServerPort, httpRouter, requestTimeout+5*time.Second)

	// Graceful Shutdown
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	log.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.String("fetcher", cfg.Fetcher),
		zap.String("search_endpoint", cfg.SearchEndpoint),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("could not start server: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
	return nil
}
