package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/pokecache/internal/resource"
)

// Accessor binds a resource cache to the factory used to fill it
type Accessor[T any] struct {
	cache   *ResourceCache[T]
	factory Factory[T]
}

func NewAccessor[T any](cache *ResourceCache[T], factory Factory[T]) (*Accessor[T], error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: missing cache", ErrAccessorNotInitialized)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: missing factory", ErrAccessorNotInitialized)
	}

	return &Accessor[T]{
		cache:   cache,
		factory: factory,
	}, nil
}

func (a *Accessor[T]) Get(ctx context.Context, key string) (*resource.Resource[T], error) {
	if a == nil || a.cache == nil || a.factory == nil {
		return nil, ErrAccessorNotInitialized
	}
	return a.cache.GetOrCreate(ctx, key, a.factory)
}

func (a *Accessor[T]) TTL() time.Duration {
	if a == nil || a.cache == nil {
		return 0
	}
	return a.cache.TTL()
}

type accessorContextKey[T any] struct{}

func ContextWithAccessor[T any](ctx context.Context, accessor *Accessor[T]) context.Context {
	return context.WithValue(ctx, accessorContextKey[T]{}, accessor)
}

// AccessorFromContext returns the accessor placed in ctx by ContextWithAccessor
//
// Returns ErrNoAccessorInScope when called outside such a scope.
func AccessorFromContext[T any](ctx context.Context) (*Accessor[T], error) {
	accessor, ok := ctx.Value(accessorContextKey[T]{}).(*Accessor[T])
	if !ok || accessor == nil {
		var zero T
		return nil, fmt.Errorf("%w (resource type %T)", ErrNoAccessorInScope, zero)
	}
	return accessor, nil
}
