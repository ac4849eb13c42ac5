package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Amund211/pokecache/internal/adapters/cache"
	"github.com/Amund211/pokecache/internal/adapters/pokemonprovider"
	"github.com/Amund211/pokecache/internal/domain"
	"github.com/Amund211/pokecache/internal/logging"
	"github.com/Amund211/pokecache/internal/reporting"
	"github.com/Amund211/pokecache/internal/resource"
)

const maxPokemonNameLength = 100

type GetPokemonResource func(ctx context.Context, name string) (*resource.Resource[domain.Pokemon], error)

// BuildPokemonResourceFactory starts fetching the pokemon as soon as the cache asks for it
func BuildPokemonResourceFactory(provider pokemonprovider.PokemonProvider) cache.Factory[domain.Pokemon] {
	return func(ctx context.Context, name string) *resource.Resource[domain.Pokemon] {
		// The fetch is shared by everyone reading the entry, so it must outlive the request that created it
		ctx = context.WithoutCancel(ctx)
		ctx = logging.AddMetaToContext(ctx, slog.String("pokemon", name))

		return resource.New(func() (domain.Pokemon, error) {
			pokemon, err := provider.GetPokemon(ctx, name)
			if err != nil {
				// NOTE: PokemonProvider implementations handle their own error reporting
				return domain.Pokemon{}, fmt.Errorf("could not get pokemon: %w", err)
			}
			return pokemon, nil
		})
	}
}

func BuildGetPokemonResource() GetPokemonResource {
	return func(ctx context.Context, name string) (*resource.Resource[domain.Pokemon], error) {
		name = strings.TrimSpace(name)

		nameLength := len(name)
		if nameLength == 0 || nameLength > maxPokemonNameLength {
			err := fmt.Errorf("%w: invalid length", domain.ErrInvalidPokemonName)
			reporting.Report(ctx, err, map[string]string{
				"name":   name,
				"length": strconv.Itoa(nameLength),
			})
			return nil, err
		}

		accessor, err := cache.AccessorFromContext[domain.Pokemon](ctx)
		if err != nil {
			reporting.Report(ctx, err)
			return nil, err
		}

		pokemonResource, err := accessor.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get pokemon resource: %w", err)
		}

		return pokemonResource, nil
	}
}
