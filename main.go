package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amund211/pokecache/internal/adapters/cache"
	"github.com/Amund211/pokecache/internal/adapters/pokemonprovider"
	"github.com/Amund211/pokecache/internal/app"
	"github.com/Amund211/pokecache/internal/config"
	"github.com/Amund211/pokecache/internal/domain"
	"github.com/Amund211/pokecache/internal/logging"
	"github.com/Amund211/pokecache/internal/ports"
	"github.com/Amund211/pokecache/internal/reporting"
	"github.com/Amund211/pokecache/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "golang.org/x/crypto/x509roots/fallback"
)

const serviceName = "pokecache"

func main() {
	instanceID := uuid.New().String()
	logger := slog.New(
		logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil)),
	).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.OTelEnabled() {
		shutdownOTel, err := telemetry.SetupOTelSDK(ctx, serviceName, instanceID)
		if err != nil {
			fail("Failed to initialize OpenTelemetry", "error", err.Error())
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized OpenTelemetry")
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	pokemonProvider, err := pokemonprovider.NewPokeAPIOrMock(config, httpClient)
	if err != nil {
		fail("Failed to initialize PokeAPI", "error", err.Error())
	}
	logger.Info("Initialized PokemonProvider")

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	pokemonCache, err := cache.NewResourceCache[domain.Pokemon](
		"pokemon",
		config.CacheTTL(),
		config.CacheSweepInterval(),
		logger.With("component", "cache"),
	)
	if err != nil {
		fail("Failed to initialize pokemon cache", "error", err.Error())
	}
	defer pokemonCache.Close()

	pokemonAccessor, err := cache.NewAccessor(pokemonCache, app.BuildPokemonResourceFactory(pokemonProvider))
	if err != nil {
		fail("Failed to initialize pokemon cache accessor", "error", err.Error())
	}

	allowedOrigins, err := ports.NewDomainSuffixes(config.AllowedOriginSuffixes()...)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	getPokemonResource := app.BuildGetPokemonResource()

	mux := http.NewServeMux()

	mux.HandleFunc(
		"OPTIONS /v1/pokemon/{name}",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"GET /v1/pokemon/{name}",
		ports.MakeGetPokemonHandler(
			getPokemonResource,
			pokemonAccessor,
			config.SuspenseTimeout(),
			allowedOrigins,
			logger.With("port", "getpokemon"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("GET /healthz", ports.MakeHealthzHandler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Port()),
		Handler: otelhttp.NewHandler(mux, serviceName),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", "error", err.Error())
		}
	}()

	logger.Info("Init complete")
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		// Let in-flight requests finish before the cache is closed
		<-shutdownDone
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
