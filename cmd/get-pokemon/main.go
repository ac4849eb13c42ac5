package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Amund211/pokecache/internal/adapters/cache"
	"github.com/Amund211/pokecache/internal/adapters/pokemonprovider"
	"github.com/Amund211/pokecache/internal/app"
	"github.com/Amund211/pokecache/internal/domain"
	"github.com/Amund211/pokecache/internal/logging"
	"github.com/Amund211/pokecache/internal/resource"
)

const defaultBaseURL = "https://pokeapi.co/api/v2"

type output struct {
	Name    string          `json:"name"`
	Shared  string          `json:"sharedWith,omitempty"`
	Pokemon *domain.Pokemon `json:"pokemon,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// settle polls the resource until it is no longer pending
func settle(ctx context.Context, r *resource.Resource[domain.Pokemon]) resource.Result[domain.Pokemon] {
	for {
		result := r.Read()
		handle, ok := result.Pending()
		if !ok {
			return result
		}

		if err := handle.Wait(ctx); err != nil {
			// Still pending
			return r.Read()
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("No pokemon name provided")
	}
	names := os.Args[1:]

	baseURL := strings.TrimSuffix(os.Getenv("POKEAPI_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}
	provider, err := pokemonprovider.NewPokeAPI(httpClient, baseURL, time.Now)
	if err != nil {
		log.Fatalf("Failed to initialize PokeAPI: %v", err)
	}

	pokemonCache, err := cache.NewResourceCache[domain.Pokemon]("cli", 5*time.Second, 1*time.Second, logger)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer pokemonCache.Close()

	accessor, err := cache.NewAccessor(pokemonCache, app.BuildPokemonResourceFactory(provider))
	if err != nil {
		log.Fatalf("Failed to initialize cache accessor: %v", err)
	}

	ctx := logging.AddToContext(context.Background(), logger)
	ctx = cache.ContextWithAccessor(ctx, accessor)

	getPokemonResource := app.BuildGetPokemonResource()

	// Every fetch is started before any result is awaited
	resources := make([]*resource.Resource[domain.Pokemon], len(names))
	outputs := make([]output, len(names))
	firstRequester := make(map[*resource.Resource[domain.Pokemon]]string)
	for i, name := range names {
		outputs[i].Name = name

		r, err := getPokemonResource(ctx, name)
		if err != nil {
			outputs[i].Error = err.Error()
			continue
		}
		resources[i] = r

		if first, ok := firstRequester[r]; ok {
			outputs[i].Shared = first
		} else {
			firstRequester[r] = name
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	encoder := json.NewEncoder(os.Stdout)
	failed := false
	for i, r := range resources {
		if r != nil {
			result := settle(waitCtx, r)
			switch result.Status() {
			case resource.StatusReady:
				pokemon, _ := result.Value()
				outputs[i].Pokemon = &pokemon
			case resource.StatusFailed:
				outputs[i].Error = result.Err().Error()
			case resource.StatusPending:
				outputs[i].Error = "timed out waiting for pokeapi"
			}
		}

		if outputs[i].Error != "" {
			failed = true
		}

		if err := encoder.Encode(outputs[i]); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
	}

	if failed {
		pokemonCache.Close()
		os.Exit(1)
	}
}
