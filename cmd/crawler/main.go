// Command crawler runs the news crawl engine: it seeds the frontier
// from the configured seed URLs, then runs a fixed pool of fetch
// workers until it receives a shutdown signal.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/vkarelin/newscrawl/internal/config"
	"github.com/vkarelin/newscrawl/internal/extract"
	"github.com/vkarelin/newscrawl/internal/fetchworker"
	"github.com/vkarelin/newscrawl/internal/health"
	"github.com/vkarelin/newscrawl/internal/pacer"
	"github.com/vkarelin/newscrawl/internal/store"
	"github.com/vkarelin/newscrawl/internal/supervisor"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("crawler exited with error")
	}
}

func run(logger zerolog.Logger) error {
	if len(os.Args) != 2 {
		return fmt.Errorf("usage: %s <config-file>", os.Args[0])
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	db, err := store.New(ctx, cfg.DB.URI, &logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	frontier := store.NewFrontier(db)
	corpus := store.NewCorpus(db, extract.NewExtractor())

	p := pacer.New(cfg.Logic.DelayDuration())

	workerCfg := fetchworker.Config{
		RequestTimeout:    cfg.Logic.RequestTimeoutDuration(),
		MaxRetries:        cfg.Logic.MaxRetries,
		RecrawlAfter:      cfg.Logic.RecrawlAfter(),
		NonArticleRefetch: cfg.Logic.NonArticleRefetch(),
		LinksPerPage:      cfg.Logic.LinksPerPage,
	}

	sup := supervisor.New(frontier, cfg.Logic.Workers, func(id string) *fetchworker.Worker {
		return fetchworker.New(id, frontier, corpus, p, workerCfg, logger)
	}, logger)

	if err := sup.Seed(ctx, cfg.Seeds); err != nil {
		return fmt.Errorf("seed frontier: %w", err)
	}

	healthServer := health.NewServer(db, cfg.HealthPort)

	go func() {
		logger.Info().Int("port", cfg.HealthPort).Msg("starting health server")

		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("health server error")
		}
	}()

	healthServer.SetReady(true)

	logger.Info().Int("workers", cfg.Logic.Workers).Msg("starting crawler")

	if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logger.Info().Msg("crawler stopped")

	return nil
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
