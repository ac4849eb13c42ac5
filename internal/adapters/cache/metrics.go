package cache

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "pokecache/cache"

type cacheMetricsCollection struct {
	lookups   metric.Int64Counter
	evictions metric.Int64Counter
	entries   metric.Int64ObservableGauge
}

var metrics cacheMetricsCollection

func init() {
	meter := otel.Meter(meterName)

	lookups, err := meter.Int64Counter(
		"cache/lookups",
		metric.WithDescription("Number of resource lookups, by result"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create lookups metric: %w", err))
	}

	evictions, err := meter.Int64Counter(
		"cache/evictions",
		metric.WithDescription("Number of entries removed by the sweep"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create evictions metric: %w", err))
	}

	entries, err := meter.Int64ObservableGauge(
		"cache/entries",
		metric.WithDescription("Number of entries currently indexed"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create entries metric: %w", err))
	}

	metrics = cacheMetricsCollection{
		lookups:   lookups,
		evictions: evictions,
		entries:   entries,
	}
}
