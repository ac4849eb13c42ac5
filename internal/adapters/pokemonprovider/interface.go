package pokemonprovider

import (
	"context"
	"net/http"

	"github.com/Amund211/pokecache/internal/domain"
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type PokemonProvider interface {
	GetPokemon(ctx context.Context, name string) (domain.Pokemon, error)
}
