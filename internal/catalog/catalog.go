// Package catalog is a read-only, in-memory view of pokemon and their reviews.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNotFound = errors.New("not found")

const (
	TypeElectric = "ELECTRIC"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Pokemon struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Review struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Stars     int    `json:"stars"`
	PokemonID int    `json:"pokemonId"`
}

// Page is one page of a listing, newest entries first.
type Page[T any] struct {
	Content       []T  `json:"content"`
	PageNo        int  `json:"pageNo"`
	PageSize      int  `json:"pageSize"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Last          bool `json:"last"`
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	pokemon []Pokemon // ordered by id
	reviews map[int][]Review
}

func New(pokemon []Pokemon, reviews []Review) *Catalog {
	c := &Catalog{
		pokemon: append([]Pokemon(nil), pokemon...),
		reviews: make(map[int][]Review),
	}
	sort.Slice(c.pokemon, func(i, j int) bool { return c.pokemon[i].ID < c.pokemon[j].ID })
	for _, r := range reviews {
		c.reviews[r.PokemonID] = append(c.reviews[r.PokemonID], r)
	}
	return c
}

// Seeded returns pikachu1 to pikachu10, each with two reviews.
func Seeded() *Catalog {
	var (
		pokemon []Pokemon
		reviews []Review
	)
	for i := 1; i <= 10; i++ {
		p := Pokemon{ID: i, Name: fmt.Sprintf("pikachu%d", i), Type: TypeElectric}
		pokemon = append(pokemon, p)
		reviews = append(reviews,
			Review{ID: 2*i - 1, Title: p.Name + " title", Content: p.Name + " content", Stars: 5, PokemonID: p.ID},
			Review{ID: 2 * i, Title: "Electric title", Content: "Electric content", Stars: 9, PokemonID: p.ID},
		)
	}
	return New(pokemon, reviews)
}

// List returns page pageNo (zero based) of all pokemon, highest id first.
func (c *Catalog) List(pageNo, pageSize int) Page[Pokemon] {
	if pageNo < 0 {
		pageNo = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	total := len(c.pokemon)
	totalPages := (total + pageSize - 1) / pageSize

	content := make([]Pokemon, 0)
	if pageNo < totalPages {
		for i := pageNo * pageSize; i < total && len(content) < pageSize; i++ {
			content = append(content, c.pokemon[total-1-i])
		}
	}

	return Page[Pokemon]{
		Content:       content,
		PageNo:        pageNo,
		PageSize:      pageSize,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          pageNo >= totalPages-1,
	}
}

func (c *Catalog) Get(id int) (Pokemon, error) {
	i := sort.Search(len(c.pokemon), func(i int) bool { return c.pokemon[i].ID >= id })
	if i < len(c.pokemon) && c.pokemon[i].ID == id {
		return c.pokemon[i], nil
	}
	return Pokemon{}, fmt.Errorf("pokemon %d: %w", id, ErrNotFound)
}

// Reviews returns the reviews of a pokemon.
func (c *Catalog) Reviews(pokemonID int) ([]Review, error) {
	if _, err := c.Get(pokemonID); err != nil {
		return nil, err
	}
	return append([]Review{}, c.reviews[pokemonID]...), nil
}

// Review returns a single review, which must belong to the given pokemon.
func (c *Catalog) Review(pokemonID, reviewID int) (Review, error) {
	reviews, err := c.Reviews(pokemonID)
	if err != nil {
		return Review{}, err
	}
	for _, r := range reviews {
		if r.ID == reviewID {
			return r, nil
		}
	}
	return Review{}, fmt.Errorf("review %d of pokemon %d: %w", reviewID, pokemonID, ErrNotFound)
}
