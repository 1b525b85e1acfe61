package client

import (
	"context"
	"strconv"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/catalog"
)

func (c *Client) ListPokemon(ctx context.Context, pageNo, pageSize int) (*catalog.Page[catalog.Pokemon], string, error) {
	var page catalog.Page[catalog.Pokemon]
	correlation, err := c.get(ctx, c.url().
		setPath(api.ListPokemonRoute).
		addQueryParam("pageNo", pageNo).
		addQueryParam("pageSize", pageSize).
		build(), &page)
	return &page, correlation, err
}

func (c *Client) GetPokemon(ctx context.Context, id int) (*catalog.Pokemon, string, error) {
	var p catalog.Pokemon
	correlation, err := c.get(ctx, c.url().setPath(api.PokemonParent+"/"+strconv.Itoa(id)).build(), &p)
	return &p, correlation, err
}
