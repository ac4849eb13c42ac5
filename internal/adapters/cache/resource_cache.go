package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Amund211/pokecache/internal/logging"
	"github.com/Amund211/pokecache/internal/resource"
	"github.com/jellydator/ttlcache/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Factory creates the resource for a canonical key. The resource's operation
// must be started before the factory returns.
type Factory[T any] func(ctx context.Context, key string) *resource.Resource[T]

// ResourceCache indexes resources by canonical key with a sliding TTL.
//
// Every lookup pushes the expiry of the entry to now + ttl. Expired entries are
// removed by a sweep running every sweepInterval until Close is called.
// Removing an entry never affects the resource itself.
type ResourceCache[T any] struct {
	name          string
	ttl           time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger

	// mu serializes lookups with each other and with the sweep
	mu     sync.Mutex
	closed bool
	// entries tracks the expiry of each key. ttlcache hides items once their
	// deadline passes, so index keeps every entry until the sweep removes it.
	entries *ttlcache.Cache[string, *resource.Resource[T]]
	index   map[string]*resource.Resource[T]

	stopSweep context.CancelFunc
	sweepDone chan struct{}
	closeOnce sync.Once

	unsubscribeEvictions func()
	metricRegistration   metric.Registration
}

func NewResourceCache[T any](name string, ttl, sweepInterval time.Duration, logger *slog.Logger) (*ResourceCache[T], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidDuration, ttl)
	}
	if sweepInterval <= 0 {
		return nil, fmt.Errorf("%w: sweep interval must be positive, got %s", ErrInvalidDuration, sweepInterval)
	}

	// NOTE: The ttlcache expiration loop (Start) is not used, expired items are removed by our own sweep
	entries := ttlcache.New[string, *resource.Resource[T]](
		ttlcache.WithTTL[string, *resource.Resource[T]](ttl),
	)

	c := &ResourceCache[T]{
		name:          name,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		logger:        logger.With(slog.String("cache", name)),
		entries:       entries,
		index:         make(map[string]*resource.Resource[T]),
		sweepDone:     make(chan struct{}),
	}

	c.unsubscribeEvictions = entries.OnEviction(c.onEviction)

	registration, err := otel.Meter(meterName).RegisterCallback(c.observe, metrics.entries)
	if err != nil {
		c.unsubscribeEvictions()
		return nil, fmt.Errorf("failed to register entries callback: %w", err)
	}
	c.metricRegistration = registration

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	c.stopSweep = stopSweep

	ticker := time.NewTicker(sweepInterval)
	go c.sweepUntilDone(sweepCtx, ticker)

	return c, nil
}

// GetOrCreate returns the resource stored for key, creating it with factory if missing
//
// The same resource instance is returned for all keys with the same canonical
// form until the entry expires and is swept. Failed resources are returned as
// is, a new attempt is only made once the entry has been removed.
func (c *ResourceCache[T]) GetOrCreate(ctx context.Context, key string, factory Factory[T]) (*resource.Resource[T], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	canonicalKey := NormalizeKey(key)
	logger := logging.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("%w: %s", ErrCacheClosed, c.name)
	}

	// Get touches the item, pushing the expiry to now + ttl
	if item := c.entries.Get(canonicalKey); item != nil {
		r := item.Value()
		logger.DebugContext(ctx, "Getting resource", "cache", c.name, "key", canonicalKey, "result", "hit", "state", r.State().String())
		c.recordLookup(ctx, "hit")
		return r, nil
	}

	// Expired but not yet swept, the entry is kept and its expiry restarted
	if r, ok := c.index[canonicalKey]; ok {
		c.entries.Set(canonicalKey, r, ttlcache.DefaultTTL)
		logger.DebugContext(ctx, "Getting resource", "cache", c.name, "key", canonicalKey, "result", "hit", "state", r.State().String(), "expired", true)
		c.recordLookup(ctx, "hit")
		return r, nil
	}

	r := factory(ctx, canonicalKey)
	if r == nil {
		return nil, fmt.Errorf("%w: key %s", ErrNilResource, canonicalKey)
	}

	c.entries.Set(canonicalKey, r, ttlcache.DefaultTTL)
	c.index[canonicalKey] = r
	logger.DebugContext(ctx, "Getting resource", "cache", c.name, "key", canonicalKey, "result", "miss")
	c.recordLookup(ctx, "miss")

	return r, nil
}

// Contains reports whether an entry is stored for key without refreshing it.
// Expired entries count until the sweep removes them.
func (c *ResourceCache[T]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.index[NormalizeKey(key)]
	return ok
}

// Len returns the number of stored entries, including expired entries the
// sweep has not removed yet
func (c *ResourceCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.index)
}

func (c *ResourceCache[T]) TTL() time.Duration {
	return c.ttl
}

func (c *ResourceCache[T]) SweepInterval() time.Duration {
	return c.sweepInterval
}

// Close stops the sweep and waits for it to exit. Lookups fail after Close.
func (c *ResourceCache[T]) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.stopSweep()
		<-c.sweepDone

		c.unsubscribeEvictions()
		if err := c.metricRegistration.Unregister(); err != nil {
			c.logger.Warn("Failed to unregister entries callback", "error", err.Error())
		}
		c.logger.Info("Resource cache closed")
	})
}

func (c *ResourceCache[T]) sweepUntilDone(ctx context.Context, ticker *time.Ticker) {
	defer close(c.sweepDone)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *ResourceCache[T]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.DeleteExpired()

	// Entries expiring after DeleteExpired returned are removed in this sweep as well
	for key := range c.index {
		if c.entries.Has(key) {
			continue
		}
		delete(c.index, key)
		c.entries.Delete(key)
	}
}

func (c *ResourceCache[T]) onEviction(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *resource.Resource[T]]) {
	if reason != ttlcache.EvictionReasonExpired && reason != ttlcache.EvictionReasonDeleted {
		return
	}
	c.logger.Debug("Evicted expired resource", "key", item.Key(), "state", item.Value().State().String())
	metrics.evictions.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", c.name)))
}

func (c *ResourceCache[T]) observe(ctx context.Context, observer metric.Observer) error {
	observer.ObserveInt64(metrics.entries, int64(c.Len()), metric.WithAttributes(attribute.String("cache", c.name)))
	return nil
}

func (c *ResourceCache[T]) recordLookup(ctx context.Context, result string) {
	metrics.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", c.name),
		attribute.String("result", result),
	))
}
