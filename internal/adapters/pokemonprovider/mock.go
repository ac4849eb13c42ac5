package pokemonprovider

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/Amund211/pokecache/internal/domain"
)

type mockedPokemonProvider struct {
	delay   time.Duration
	nowFunc func() time.Time
}

// NewMockedPokemonProvider generates a pokemon from the requested name after the given delay
func NewMockedPokemonProvider(delay time.Duration, nowFunc func() time.Time) PokemonProvider {
	return &mockedPokemonProvider{
		delay:   delay,
		nowFunc: nowFunc,
	}
}

func (m *mockedPokemonProvider) GetPokemon(ctx context.Context, name string) (domain.Pokemon, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return domain.Pokemon{}, ctx.Err()
		}
	}

	hash := fnv.New32a()
	_, _ = hash.Write([]byte(name))
	id := int(hash.Sum32()%1000) + 1

	return domain.Pokemon{
		ID:        id,
		Name:      name,
		Height:    id%20 + 1,
		Weight:    id%500 + 1,
		Types:     []string{"normal"},
		Abilities: []string{"run-away"},
		Stats: []domain.PokemonStat{
			{Name: "hp", Base: id%100 + 20},
			{Name: "attack", Base: id%90 + 20},
			{Name: "defense", Base: id%80 + 20},
		},
		QueriedAt: m.nowFunc(),
	}, nil
}
