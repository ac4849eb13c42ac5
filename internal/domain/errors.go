package domain

import "errors"

var (
	ErrPokemonNotFound        = errors.New("pokemon not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrInvalidPokemonName     = errors.New("invalid pokemon name")
)
