package domain

import "time"

type PokemonStat struct {
	Name string
	Base int
}

type Pokemon struct {
	ID        int
	Name      string
	Image     string
	Height    int // decimetres
	Weight    int // hectograms
	Types     []string
	Abilities []string
	Stats     []PokemonStat
	QueriedAt time.Time
}
