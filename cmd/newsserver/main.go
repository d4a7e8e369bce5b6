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

	"github.com/PranavKumarAV/Lets-stay-updated/internal/api"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/cache"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/config"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/llm"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/news"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/scraper"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/sources"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Init(cfg.Environment, cfg.Debug)
	logger.Info("starting news server",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"llm_configured", cfg.HasLLMKey(),
		"newsapi_keys", len(cfg.NewsAPIKeys()))

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	ids, err := storage.NewSourceIDStore(cfg.SourceIDMapPath)
	if err != nil {
		return fmt.Errorf("loading source id map: %w", err)
	}

	health := llm.NewProviderHealth(cfg.ModelCooldown)
	client := llm.New(llm.Candidates(cfg), health, cfg.RequestTimeout)
	if !client.Enabled() {
		logger.Warn("no model credentials configured, heuristic fallbacks will be used")
	}

	registry := sources.LoadRegistry(cfg.OutletsPath)
	newsapi := sources.NewNewsAPIClient(cfg.NewsAPIKeys(), cfg.RequestTimeout, cache.New(), ids)
	factory := sources.NewFactory(registry, newsapi, cfg.RecencyWindow, cfg.RequestTimeout)

	aggregator := news.NewAggregator(client, factory, scraper.New(cfg.RequestTimeout), news.Options{
		MaxAttempts:   cfg.MaxFetchAttempts,
		RecencyWindow: cfg.RecencyWindow,
		VerifyURLs:    cfg.VerifyURLs,
		EnrichMinLen:  200,
	})

	server := api.NewServer(aggregator, client, store, client, cfg.ArticleTTL)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
