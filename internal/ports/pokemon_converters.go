package ports

import (
	"encoding/json"
	"time"

	"github.com/Amund211/pokecache/internal/domain"
)

type pokemonStatResponseObject struct {
	Name string `json:"name"`
	Base int    `json:"base"`
}

type pokemonResponseObject struct {
	ID        int                         `json:"id"`
	Name      string                      `json:"name"`
	Image     *string                     `json:"image"`
	Height    int                         `json:"height"`
	Weight    int                         `json:"weight"`
	Types     []string                    `json:"types"`
	Abilities []string                    `json:"abilities"`
	Stats     []pokemonStatResponseObject `json:"stats"`
	QueriedAt string                      `json:"queriedAt"`
}

type pokemonResponse struct {
	Success bool                   `json:"success"`
	Pokemon *pokemonResponseObject `json:"pokemon,omitempty"`
	Pending bool                   `json:"pending,omitempty"`
	Name    string                 `json:"name,omitempty"`
	Cause   string                 `json:"cause,omitempty"`
}

func pokemonToResponseObject(pokemon domain.Pokemon) *pokemonResponseObject {
	var image *string
	if pokemon.Image != "" {
		image = &pokemon.Image
	}

	types := pokemon.Types
	if types == nil {
		types = []string{}
	}
	abilities := pokemon.Abilities
	if abilities == nil {
		abilities = []string{}
	}

	stats := make([]pokemonStatResponseObject, 0, len(pokemon.Stats))
	for _, stat := range pokemon.Stats {
		stats = append(stats, pokemonStatResponseObject{
			Name: stat.Name,
			Base: stat.Base,
		})
	}

	return &pokemonResponseObject{
		ID:        pokemon.ID,
		Name:      pokemon.Name,
		Image:     image,
		Height:    pokemon.Height,
		Weight:    pokemon.Weight,
		Types:     types,
		Abilities: abilities,
		Stats:     stats,
		QueriedAt: pokemon.QueriedAt.UTC().Format(time.RFC3339),
	}
}

func makeSuccessPokemonResponse(pokemon domain.Pokemon) ([]byte, error) {
	return json.Marshal(pokemonResponse{
		Success: true,
		Pokemon: pokemonToResponseObject(pokemon),
	})
}

func makePendingPokemonResponse(name string) ([]byte, error) {
	return json.Marshal(pokemonResponse{
		Success: false,
		Pending: true,
		Name:    name,
	})
}

func makeErrorPokemonResponse(name string, cause string) ([]byte, error) {
	return json.Marshal(pokemonResponse{
		Success: false,
		Name:    name,
		Cause:   cause,
	})
}
