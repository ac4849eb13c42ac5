package ports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amund211/pokecache/internal/adapters/cache"
	"github.com/Amund211/pokecache/internal/app"
	"github.com/Amund211/pokecache/internal/domain"
	"github.com/Amund211/pokecache/internal/logging"
	"github.com/Amund211/pokecache/internal/ratelimiting"
	"github.com/Amund211/pokecache/internal/reporting"
	"github.com/Amund211/pokecache/internal/resource"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func MakeGetPokemonHandler(
	getPokemonResource app.GetPokemonResource,
	accessor *cache.Accessor[domain.Pokemon],
	suspenseTimeout time.Duration,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(8),
		ratelimiting.BurstSize(480),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)

	onLimitExceeded := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"success":false,"cause":"rate limit exceeded"}`))
	}

	middleware := ComposeMiddlewares(
		buildMetricsMiddleware("get_pokemon"),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware("get_pokemon"),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(ipRateLimiter, onLimitExceeded),
		NewAccessorScopeMiddleware(accessor),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := r.PathValue("name")
		wait := r.URL.Query().Get("wait") != "false"

		writeResponse := func(ctx context.Context, response []byte, err error, statusCode int) {
			if err != nil {
				reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success":false,"cause":"internal server error"}`))
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statusCode)
			w.Write(response)
		}

		handleError := func(ctx context.Context, cause string, statusCode int) {
			response, err := makeErrorPokemonResponse(name, cause)
			writeResponse(ctx, response, err, statusCode)
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("pokemon", name))
		ctx = reporting.AddExtrasToContext(ctx,
			map[string]string{
				"pokemon": name,
			},
		)

		pokemonResource, err := getPokemonResource(ctx, name)
		if errors.Is(err, domain.ErrInvalidPokemonName) {
			handleError(ctx, "invalid name", http.StatusBadRequest)
			return
		} else if err != nil {
			// NOTE: GetPokemonResource reports its own errors
			handleError(ctx, "internal server error", http.StatusInternalServerError)
			return
		}

		result := pokemonResource.Read()
		if handle, ok := result.Pending(); ok {
			result = awaitPending(ctx, pokemonResource, handle, wait, suspenseTimeout)
		}

		switch result.Status() {
		case resource.StatusPending:
			w.Header().Set("Retry-After", "1")
			response, err := makePendingPokemonResponse(name)
			writeResponse(ctx, response, err, http.StatusAccepted)
		case resource.StatusFailed:
			// NOTE: The fetch reports its own errors
			err := result.Err()
			if errors.Is(err, domain.ErrPokemonNotFound) {
				handleError(ctx, "not found", http.StatusNotFound)
			} else if errors.Is(err, domain.ErrTemporarilyUnavailable) {
				handleError(ctx, "temporarily unavailable", http.StatusServiceUnavailable)
			} else {
				handleError(ctx, "internal server error", http.StatusInternalServerError)
			}
		case resource.StatusReady:
			pokemon, _ := result.Value()
			response, err := makeSuccessPokemonResponse(pokemon)
			writeResponse(ctx, response, err, http.StatusOK)
		}
	}

	return middleware(handler)
}

// awaitPending waits at most suspenseTimeout for the resource to settle, then reads it again
func awaitPending(
	ctx context.Context,
	pokemonResource *resource.Resource[domain.Pokemon],
	handle resource.Handle,
	wait bool,
	suspenseTimeout time.Duration,
) resource.Result[domain.Pokemon] {
	logger := logging.FromContext(ctx)

	if !wait {
		logger.InfoContext(ctx, "Pokemon is pending, not waiting")
		metrics.suspenseCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "skipped")))
		return pokemonResource.Read()
	}

	start := time.Now()
	waitCtx, cancel := context.WithTimeout(ctx, suspenseTimeout)
	defer cancel()

	err := handle.Wait(waitCtx)
	result := pokemonResource.Read()

	outcome := "settled"
	if err != nil {
		outcome = "timeout"
	}
	logger.InfoContext(ctx, "Waited for pending pokemon",
		slog.String("outcome", outcome),
		slog.String("duration", time.Since(start).String()),
		slog.String("status", result.Status().String()),
	)
	metrics.suspenseCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	return result
}
