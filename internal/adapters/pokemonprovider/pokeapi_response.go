package pokemonprovider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Amund211/pokecache/internal/domain"
)

type pokeAPIResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault *string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Slot int             `json:"slot"`
		Type pokeAPIResource `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability  pokeAPIResource `json:"ability"`
		IsHidden bool            `json:"is_hidden"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int             `json:"base_stat"`
		Stat     pokeAPIResource `json:"stat"`
	} `json:"stats"`
}

type pokeAPIResource struct {
	Name string `json:"name"`
}

func pokemonFromPokeAPIResponse(statusCode int, data []byte, queriedAt time.Time) (domain.Pokemon, error) {
	switch statusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.Pokemon{}, fmt.Errorf("pokeapi returned status code %d: %w", statusCode, domain.ErrPokemonNotFound)
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.Pokemon{}, fmt.Errorf("pokeapi returned status code %d: %w", statusCode, domain.ErrTemporarilyUnavailable)
	default:
		return domain.Pokemon{}, fmt.Errorf("pokeapi returned status code %d", statusCode)
	}

	var response pokeAPIResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.Pokemon{}, fmt.Errorf("failed to parse pokeapi response: %w", err)
	}

	if response.Name == "" {
		return domain.Pokemon{}, fmt.Errorf("pokeapi response is missing name")
	}

	pokemon := domain.Pokemon{
		ID:        response.ID,
		Name:      response.Name,
		Height:    response.Height,
		Weight:    response.Weight,
		Types:     make([]string, 0, len(response.Types)),
		Abilities: make([]string, 0, len(response.Abilities)),
		Stats:     make([]domain.PokemonStat, 0, len(response.Stats)),
		QueriedAt: queriedAt,
	}

	if response.Sprites.FrontDefault != nil {
		pokemon.Image = *response.Sprites.FrontDefault
	}

	// Types are ordered by slot in the response
	for _, t := range response.Types {
		pokemon.Types = append(pokemon.Types, t.Type.Name)
	}

	for _, a := range response.Abilities {
		pokemon.Abilities = append(pokemon.Abilities, a.Ability.Name)
	}

	for _, s := range response.Stats {
		pokemon.Stats = append(pokemon.Stats, domain.PokemonStat{
			Name: s.Stat.Name,
			Base: s.BaseStat,
		})
	}

	return pokemon, nil
}
