package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const (
	defaultPort            = "8080"
	defaultPokeAPIBaseURL  = "https://pokeapi.co/api/v2"
	defaultCacheTTL        = 5 * time.Second
	defaultSweepInterval   = 1 * time.Second
	defaultSuspenseTimeout = 4 * time.Second
)

type Config struct {
	port                  string
	sentryDSN             string
	pokeAPIBaseURL        string
	cacheTTL              time.Duration
	cacheSweepInterval    time.Duration
	suspenseTimeout       time.Duration
	allowedOriginSuffixes []string
	otelEnabled           bool
	pokeAPIMocked         bool
	env                   environment
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) PokeAPIBaseURL() string {
	return c.pokeAPIBaseURL
}

func (c *Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

func (c *Config) CacheSweepInterval() time.Duration {
	return c.cacheSweepInterval
}

// How long a request waits for a pending resource before answering that it is still pending
func (c *Config) SuspenseTimeout() time.Duration {
	return c.suspenseTimeout
}

func (c *Config) AllowedOriginSuffixes() []string {
	return c.allowedOriginSuffixes
}

func (c *Config) OTelEnabled() bool {
	return c.otelEnabled
}

// Serve generated pokemon instead of querying PokéAPI. Only allowed in development
func (c *Config) PokeAPIMocked() bool {
	return c.pokeAPIMocked
}

func (c *Config) EnvironmentName() string {
	return string(c.env)
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, pokeAPIBaseURL: %s, cacheTTL: %s, cacheSweepInterval: %s, suspenseTimeout: %s, otelEnabled: %t, pokeAPIMocked: %t, ...}",
		string(c.env), c.port, c.pokeAPIBaseURL, c.cacheTTL, c.cacheSweepInterval, c.suspenseTimeout, c.otelEnabled, c.pokeAPIMocked,
	)
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s (%s): %w", ErrInvalidValue, key, raw, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: %s (%s) must be positive", ErrInvalidValue, key, raw)
	}
	return duration, nil
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("POKECACHE_ENVIRONMENT")
	if !ok {
		return missingKey("POKECACHE_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: POKECACHE_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	pokeAPIBaseURL := strings.TrimSuffix(os.Getenv("POKEAPI_BASE_URL"), "/")
	if pokeAPIBaseURL == "" {
		pokeAPIBaseURL = defaultPokeAPIBaseURL
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	if env == production || env == staging {
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	cacheTTL, err := durationFromEnv("CACHE_TTL", defaultCacheTTL)
	if err != nil {
		return Config{}, err
	}
	cacheSweepInterval, err := durationFromEnv("CACHE_SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return Config{}, err
	}
	suspenseTimeout, err := durationFromEnv("SUSPENSE_TIMEOUT", defaultSuspenseTimeout)
	if err != nil {
		return Config{}, err
	}

	var allowedOriginSuffixes []string
	for _, suffix := range strings.Split(os.Getenv("ALLOWED_ORIGIN_SUFFIXES"), ",") {
		suffix = strings.TrimSpace(suffix)
		if suffix != "" {
			allowedOriginSuffixes = append(allowedOriginSuffixes, suffix)
		}
	}

	var otelEnabled bool
	switch rawOTel := os.Getenv("OTEL_ENABLED"); rawOTel {
	case "", "false":
		otelEnabled = false
	case "true":
		otelEnabled = true
	default:
		return Config{}, fmt.Errorf("%w: OTEL_ENABLED (%s)", ErrInvalidValue, rawOTel)
	}

	var pokeAPIMocked bool
	switch rawMock := os.Getenv("POKEAPI_MOCK"); rawMock {
	case "", "false":
		pokeAPIMocked = false
	case "true":
		if env != development {
			return Config{}, fmt.Errorf("%w: POKEAPI_MOCK is only allowed in development", ErrInvalidValue)
		}
		pokeAPIMocked = true
	default:
		return Config{}, fmt.Errorf("%w: POKEAPI_MOCK (%s)", ErrInvalidValue, rawMock)
	}

	return Config{
		port:                  port,
		sentryDSN:             sentryDSN,
		pokeAPIBaseURL:        pokeAPIBaseURL,
		cacheTTL:              cacheTTL,
		cacheSweepInterval:    cacheSweepInterval,
		suspenseTimeout:       suspenseTimeout,
		allowedOriginSuffixes: allowedOriginSuffixes,
		otelEnabled:           otelEnabled,
		pokeAPIMocked:         pokeAPIMocked,
		env:                   env,
	}, nil
}
