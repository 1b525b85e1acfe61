package client

import (
	"context"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/buildinfo"
)

// Info queries the about endpoint. The client must point at the ops listener.
func (c *Client) Info(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.url().setPath(api.AboutRoute).build(), &info)
	return &info, correlation, err
}
