package client

import (
	"context"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

// Whoami returns the principal the client's session token resolves to.
func (c *Client) Whoami(ctx context.Context) (*api.WhoamiResponse, string, error) {
	var resp api.WhoamiResponse
	correlation, err := c.get(ctx, c.url().setPath(api.WhoamiRoute).build(), &resp)
	return &resp, correlation, err
}

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	Username      string
	Action        string
}

// ListAudits retrieves the latest audit entries from the server, limited to the specified number.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.Username != "" {
		ub = ub.addQueryParam("username", opts.Username)
	}
	if opts.Action != "" {
		ub = ub.addQueryParam("action", opts.Action)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}
