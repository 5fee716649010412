package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scenescribe/scenescribe/internal/config"
	"github.com/scenescribe/scenescribe/internal/health"
	"github.com/scenescribe/scenescribe/internal/ingest"
	"github.com/scenescribe/scenescribe/internal/metrics"
	"github.com/scenescribe/scenescribe/internal/pipeline"
	"github.com/scenescribe/scenescribe/internal/server"
	"github.com/scenescribe/scenescribe/internal/store"
	"github.com/scenescribe/scenescribe/internal/textgen"
	"github.com/scenescribe/scenescribe/internal/videogen"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("store_backend", cfg.StoreBackend).
		Bool("mock_providers", cfg.MockProviders).
		Msg("starting scenescribe")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	checker := health.NewChecker(logger)

	// Store backend
	var st store.Store
	switch cfg.StoreBackend {
	case "memory":
		st = store.NewMemoryStore()
		checker.Register("store", func(ctx context.Context) health.Status {
			return health.StatusOK
		})
	default:
		sqliteStore, err := store.NewSQLiteStore(cfg.DBPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open sqlite store")
		}
		st = sqliteStore
		checker.Register("store", func(ctx context.Context) health.Status {
			if err := sqliteStore.Ping(ctx); err != nil {
				return health.StatusDown
			}
			return health.StatusOK
		})
	}
	defer st.Close()

	generationDefaults, err := cfg.GenerationDefaults()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load generation defaults")
	}

	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}

	// Text provider
	var text textgen.Generator
	switch {
	case cfg.MockProviders || !cfg.TextGenEnabled():
		if !cfg.MockProviders {
			logger.Warn().Msg("no text provider configured, running in mock mode")
		}
		text = textgen.NewMockGenerator()
	default:
		text = textgen.NewOpenAIGenerator(cfg.OpenAIAPIKey, logger,
			textgen.WithBaseURL(cfg.OpenAIBaseURL),
			textgen.WithModel(cfg.OpenAIModel),
			textgen.WithHTTPClient(providerClient),
		)
	}

	// Video provider
	var video videogen.Generator
	switch {
	case cfg.MockProviders || !cfg.VideoGenEnabled():
		if !cfg.MockProviders {
			logger.Warn().Msg("no video provider configured, running in mock mode")
		}
		video = videogen.NewMockGenerator("https://mock.scenescribe.local")
	default:
		video = videogen.NewRunwayGenerator(cfg.VideoAPIKey, logger,
			videogen.RunwayWithBaseURL(cfg.VideoAPIURL),
			videogen.RunwayWithVersion(cfg.RunwayVersion),
			videogen.RunwayWithModel(cfg.RunwayModel),
			videogen.RunwayWithHTTPClient(providerClient),
		)
	}

	m := metrics.New()

	svc := pipeline.NewService(pipeline.Options{
		Store:           st,
		Fetcher:         ingest.NewFetcher(cfg.ProviderTimeout, cfg.IngestMaxChars, logger),
		Text:            text,
		Video:           video,
		Metrics:         m,
		Logger:          logger,
		Defaults:        generationDefaults,
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
		IngestMaxChars:  cfg.IngestMaxChars,
		MinContentChars: cfg.MinContentChars,
	})

	srv := server.NewServer(server.Config{
		ListenAddr: cfg.ListenAddr,
		Auth: server.AuthConfig{
			Mode: cfg.AuthMode,
			Key:  cfg.APIKey,
		},
		CORSOrigins: cfg.CORSOrigins,
	}, server.NewHandlers(svc, checker, logger), checker, m, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("api server error")
		}
	case <-ctx.Done():
	}

	if err := srv.Shutdown(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("scenescribe stopped")
}
