package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sorastudio/internal/adapter/repo"
	"sorastudio/internal/generation"
	"sorastudio/internal/http/handlers"
	httpapi "sorastudio/internal/http/httpapi"
	"sorastudio/internal/infra"
	"sorastudio/internal/infra/credentials"
	"sorastudio/internal/infra/geoip"
	"sorastudio/internal/middleware"
	"sorastudio/internal/providers/sora"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	// The env var wins; the credentials store is the fallback so the key can
	// be rotated with the sorakey CLI without restarting with new env.
	apiKey := cfg.SoraAPIKey
	if apiKey == "" || apiKey == infra.PlaceholderAPIKey {
		stored, err := credentials.NewStore(runner).SoraAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load sora api key from store")
		} else if stored != "" {
			apiKey = stored
		}
	}

	soraClient := sora.NewClient(sora.Options{
		APIKey:         apiKey,
		BaseURL:        cfg.SoraAPIEndpoint,
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
	})
	if !soraClient.HasCredentials() {
		// Not fatal: generation requests answer 500 until a key is set.
		logger.Warn().Msg("sora api key missing or placeholder, generation disabled")
	}

	var country middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		country = resolver.CountryCode
	}

	accounts := repo.NewAccountRepository(dbpool)
	jobs := repo.NewVideoJobRepository(dbpool)
	usage := handlers.TagUsageCountry(repo.NewUsageRepository(runner))

	orchestrator := generation.NewOrchestrator(accounts, jobs, soraClient, usage, logger)
	poller := generation.NewPoller(jobs, soraClient, logger, generation.PollerOptions{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
		Usage:       usage,
	})

	app := &handlers.App{
		SQL:       runner,
		Ledger:    accounts,
		Jobs:      jobs,
		Generator: orchestrator,
		Provider:  soraClient,
		Poller:    poller,
		Logger:    logger,
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		DefaultLocale:  "en",
		Country:        country,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		// ErrServerClosed is the normal return after Shutdown is called.
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
