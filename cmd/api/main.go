package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"roomviz/internal/catalog"
	"roomviz/internal/config"
	"roomviz/internal/logger"
	"roomviz/internal/lookup"
	"roomviz/internal/server"
	"roomviz/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(false)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Development())
	ctx := log.WithContext(context.Background())

	gateway, err := newGateway(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init generation gateway")
	}

	store, err := catalog.NewStore(ctx, cfg.DatabaseURL, cfg.Catalog.Source, catalog.Loader{
		S3: catalog.S3Config{
			Region:         cfg.Catalog.S3Region,
			Endpoint:       cfg.Catalog.S3Endpoint,
			AccessKey:      cfg.Catalog.S3AccessKey,
			SecretKey:      cfg.Catalog.S3SecretKey,
			ForcePathStyle: cfg.Catalog.ForcePathStyle,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init catalog")
	}
	if closer, ok := store.(catalog.Closer); ok {
		defer closer.Close()
	}

	lookupProvider := lookup.NewProvider(lookup.Config{
		CacheTTL: cfg.LookupCacheTTL,
		Catalog:  store,
	})

	srv := server.New(cfg, log, server.Handlers{
		Vision:  vision.Handler{Gateway: gateway},
		Catalog: catalog.Handler{Store: store},
		Lookup:  lookup.Handler{Provider: lookupProvider},
	})

	if err := run(ctx, srv, log); err != nil {
		log.Error().Err(err).Msg("server failed")
		return
	}
	log.Info().Msg("server stopped")
}

func newGateway(cfg config.Config) (*vision.Gateway, error) {
	fetcher := vision.NewHTTPFetcher(nil)

	adapters := map[vision.Provider]vision.Generator{
		vision.ProviderGemini: vision.NewGeminiGenerator(vision.GeminiConfig{
			APIKey:  config.EnvSecret(cfg.Gemini.APIKeyEnv),
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: cfg.Gemini.Timeout,
		}),
		vision.ProviderOpenAI: vision.NewOpenAIEditor(vision.OpenAIConfig{
			APIKey:  config.EnvSecret(cfg.OpenAI.APIKeyEnv),
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.OpenAI.Timeout,
			Fetcher: fetcher,
		}),
		vision.ProviderDecor8: vision.NewDecor8Generator(vision.Decor8Config{
			APIKey:  config.EnvSecret(cfg.Decor8.APIKeyEnv),
			BaseURL: cfg.Decor8.BaseURL,
			Timeout: cfg.Decor8.Timeout,
		}),
	}

	return vision.NewGateway(vision.ParseProvider(cfg.DefaultProvider), adapters)
}

// run serves until SIGINT or SIGTERM, then drains in-flight generations.
func run(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
