package client

import (
	"context"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/service"
)

// Login exchanges username and password for a session token.
// Wrong credentials yield ErrUnauthenticated.
func (c *Client) Login(ctx context.Context, username, password string) (*service.LoginResponse, string, error) {
	var resp service.LoginResponse
	correlation, err := c.post(ctx, c.url().setPath(api.LoginRoute).build(), service.LoginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}
