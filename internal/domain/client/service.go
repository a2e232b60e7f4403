package client

import (
	"context"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// Service provides business logic for the client roster.
type Service struct {
	repo Repository
}

// NewService creates a client service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a client, enforcing the workspace plan's client
// quota.
func (s *Service) Create(ctx context.Context, c *Client) (*Client, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	ws := tenant.GetWorkspace(ctx)
	if ws == nil {
		return nil, tenant.ErrNoWorkspaceInContext
	}

	limit := plan.LimitsFor(ws.Plan).MaxClients
	if limit != plan.Unbounded {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if !limit.Allows(count) {
			return nil, apperror.NewPlanLimitReached("clients", int64(limit))
		}
	}

	c.CreatedBy = appctx.GetUserID(ctx)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update validates and persists changes.
func (s *Service) Update(ctx context.Context, c *Client) (*Client, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get retrieves a client in the active workspace.
func (s *Service) Get(ctx context.Context, clientID id.ID) (*Client, error) {
	return s.repo.GetByID(ctx, clientID)
}

// List returns clients matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Client], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Archive soft-removes a client from the active roster.
func (s *Service) Archive(ctx context.Context, clientID id.ID) error {
	return s.repo.Archive(ctx, clientID)
}
