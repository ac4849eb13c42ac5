package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Amund211/pokecache/internal/adapters/cache"
	"github.com/Amund211/pokecache/internal/resource"
	"github.com/stretchr/testify/require"
)

type species struct {
	name string
}

func newSpeciesCache(t *testing.T) *cache.ResourceCache[species] {
	t.Helper()

	c, err := cache.NewResourceCache[species]("species", time.Minute, time.Second, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func speciesFactory(ctx context.Context, key string) *resource.Resource[species] {
	return resource.NewFulfilled(species{name: key})
}

func TestNewAccessor(t *testing.T) {
	t.Parallel()

	t.Run("missing cache", func(t *testing.T) {
		t.Parallel()

		_, err := cache.NewAccessor[species](nil, speciesFactory)
		require.ErrorIs(t, err, cache.ErrAccessorNotInitialized)
	})

	t.Run("missing factory", func(t *testing.T) {
		t.Parallel()

		_, err := cache.NewAccessor(newSpeciesCache(t), nil)
		require.ErrorIs(t, err, cache.ErrAccessorNotInitialized)
	})

	t.Run("delegates to the cache", func(t *testing.T) {
		t.Parallel()

		c := newSpeciesCache(t)
		accessor, err := cache.NewAccessor(c, speciesFactory)
		require.NoError(t, err)
		require.Equal(t, time.Minute, accessor.TTL())

		first, err := accessor.Get(t.Context(), "Bulbasaur")
		require.NoError(t, err)
		second, err := accessor.Get(t.Context(), "BULBASAUR")
		require.NoError(t, err)
		require.Same(t, first, second)
		require.True(t, c.Contains("bulbasaur"))

		value, ok := first.Read().Value()
		require.True(t, ok)
		require.Equal(t, "bulbasaur", value.name)
	})
}

func TestUninitializedAccessor(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		var accessor *cache.Accessor[species]
		_, err := accessor.Get(t.Context(), "pikachu")
		require.ErrorIs(t, err, cache.ErrAccessorNotInitialized)
		require.Equal(t, time.Duration(0), accessor.TTL())
	})

	t.Run("zero value", func(t *testing.T) {
		t.Parallel()

		accessor := &cache.Accessor[species]{}
		_, err := accessor.Get(t.Context(), "pikachu")
		require.ErrorIs(t, err, cache.ErrAccessorNotInitialized)
	})
}

func TestAccessorScope(t *testing.T) {
	t.Parallel()

	t.Run("outside scope", func(t *testing.T) {
		t.Parallel()

		_, err := cache.AccessorFromContext[species](t.Context())
		require.ErrorIs(t, err, cache.ErrNoAccessorInScope)
		require.ErrorContains(t, err, "ContextWithAccessor")
	})

	t.Run("inside scope", func(t *testing.T) {
		t.Parallel()

		accessor, err := cache.NewAccessor(newSpeciesCache(t), speciesFactory)
		require.NoError(t, err)

		ctx := cache.ContextWithAccessor(t.Context(), accessor)

		scoped, err := cache.AccessorFromContext[species](ctx)
		require.NoError(t, err)
		require.Same(t, accessor, scoped)
	})

	t.Run("scope is per resource type", func(t *testing.T) {
		t.Parallel()

		accessor, err := cache.NewAccessor(newSpeciesCache(t), speciesFactory)
		require.NoError(t, err)

		ctx := cache.ContextWithAccessor(t.Context(), accessor)

		_, err = cache.AccessorFromContext[string](ctx)
		require.ErrorIs(t, err, cache.ErrNoAccessorInScope)
	})

	t.Run("nil accessor in scope", func(t *testing.T) {
		t.Parallel()

		ctx := cache.ContextWithAccessor[species](t.Context(), nil)

		_, err := cache.AccessorFromContext[species](ctx)
		require.ErrorIs(t, err, cache.ErrNoAccessorInScope)
	})
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		key  string
		want string
	}{
		{key: "pikachu", want: "pikachu"},
		{key: "Pikachu", want: "pikachu"},
		{key: "PIKACHU", want: "pikachu"},
		{key: "Mr. Mime", want: "mr. mime"},
		{key: "FLABÉBÉ", want: "flabébé"},
		{key: "", want: ""},
	} {
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, cache.NormalizeKey(tc.key))
		})
	}
}
