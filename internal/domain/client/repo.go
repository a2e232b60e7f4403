package client

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Repository is the workspace-scoped persistence contract for clients.
// Implementations take the workspace id from the request context; callers
// never pass it.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, clientID id.ID) (*Client, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Client], error)
	Count(ctx context.Context) (int64, error)
	Archive(ctx context.Context, clientID id.ID) error
}
