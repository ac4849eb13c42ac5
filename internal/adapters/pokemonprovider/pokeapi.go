package pokemonprovider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/Amund211/pokecache/internal/config"
	"github.com/Amund211/pokecache/internal/constants"
	"github.com/Amund211/pokecache/internal/domain"
	"github.com/Amund211/pokecache/internal/logging"
	"github.com/Amund211/pokecache/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// PokéAPI has no hard limit, but asks consumers to be considerate
const (
	pokeAPIRequestsPerSecond = 10
	pokeAPIBurst             = 20
)

type pokeAPIMetricsCollection struct {
	requestCount metric.Int64Counter
}

func setupPokeAPIMetrics(meter metric.Meter) (pokeAPIMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("pokemonprovider/pokeapi/request_count")
	if err != nil {
		return pokeAPIMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	return pokeAPIMetricsCollection{
		requestCount: requestCount,
	}, nil
}

type pokeAPI struct {
	httpClient HttpClient
	baseURL    string
	limiter    *rate.Limiter
	nowFunc    func() time.Time

	metrics pokeAPIMetricsCollection
	tracer  trace.Tracer
}

func NewPokeAPI(httpClient HttpClient, baseURL string, nowFunc func() time.Time) (*pokeAPI, error) {
	const name = "pokecache/pokemonprovider/pokeapi"

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupPokeAPIMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &pokeAPI{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(pokeAPIRequestsPerSecond), pokeAPIBurst),
		nowFunc:    nowFunc,

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

func (p *pokeAPI) GetPokemon(ctx context.Context, name string) (domain.Pokemon, error) {
	ctx, span := p.tracer.Start(ctx, "PokeAPI.GetPokemon")
	defer span.End()

	logger := logging.FromContext(ctx)

	if err := p.limiter.Wait(ctx); err != nil {
		logger.WarnContext(ctx, "Did not run PokeAPI.GetPokemon due to rate limiting", "error", err.Error())
		return domain.Pokemon{}, fmt.Errorf("%w: too many requests to pokeapi: %w", domain.ErrTemporarilyUnavailable, err)
	}

	requestURL := fmt.Sprintf("%s/pokemon/%s", p.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return domain.Pokemon{}, err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		err := fmt.Errorf("%w: failed to send request: %w", domain.ErrTemporarilyUnavailable, err)
		reporting.Report(ctx, err)
		return domain.Pokemon{}, err
	}

	queriedAt := p.nowFunc()

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err := fmt.Errorf("failed to read response body: %w", err)
		reporting.Report(ctx, err)
		return domain.Pokemon{}, err
	}

	logger.InfoContext(
		ctx,
		"pokeapi request completed",
		slog.String("url", requestURL),
		slog.Int("status", resp.StatusCode),
		slog.String("duration", time.Since(start).String()),
	)

	p.metrics.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("status_code", strconv.Itoa(resp.StatusCode)),
		),
	)

	pokemon, err := pokemonFromPokeAPIResponse(resp.StatusCode, data, queriedAt)
	if errors.Is(err, domain.ErrPokemonNotFound) {
		// Don't report, as it is a client error
		return domain.Pokemon{}, err
	} else if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"name":   name,
			"status": strconv.Itoa(resp.StatusCode),
			"data":   truncate(string(data), 1000),
		})
		return domain.Pokemon{}, err
	}

	return pokemon, nil
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	// Back off to a rune boundary so the result stays valid UTF-8
	for length > 0 && !utf8.RuneStart(s[length]) {
		length--
	}
	return s[:length] + "..."
}

func NewPokeAPIOrMock(config config.Config, httpClient HttpClient) (PokemonProvider, error) {
	if config.PokeAPIMocked() {
		return NewMockedPokemonProvider(250*time.Millisecond, time.Now), nil
	}
	return NewPokeAPI(httpClient, config.PokeAPIBaseURL(), time.Now)
}
