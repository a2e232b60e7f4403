package project

import (
	"context"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

// Service provides business logic for projects.
type Service struct {
	repo Repository
}

// NewService creates a project service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a project, enforcing the active-project quota
// of the workspace plan.
func (s *Service) Create(ctx context.Context, p *Project) (*Project, error) {
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	ws := tenant.GetWorkspace(ctx)
	if ws == nil {
		return nil, tenant.ErrNoWorkspaceInContext
	}

	limit := plan.LimitsFor(ws.Plan).MaxActiveProjects
	if limit != plan.Unbounded && p.Status == StatusActive {
		count, err := s.repo.CountActive(ctx)
		if err != nil {
			return nil, err
		}
		if !limit.Allows(count) {
			return nil, apperror.NewPlanLimitReached("active projects", int64(limit))
		}
	}

	p.CreatedBy = appctx.GetUserID(ctx)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update validates and persists changes. Reactivating a project re-checks the
// quota.
func (s *Service) Update(ctx context.Context, p *Project) (*Project, error) {
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	if p.Status == StatusActive {
		current, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if current.Status != StatusActive {
			ws := tenant.GetWorkspace(ctx)
			if ws == nil {
				return nil, tenant.ErrNoWorkspaceInContext
			}
			limit := plan.LimitsFor(ws.Plan).MaxActiveProjects
			if limit != plan.Unbounded {
				count, err := s.repo.CountActive(ctx)
				if err != nil {
					return nil, err
				}
				if !limit.Allows(count) {
					return nil, apperror.NewPlanLimitReached("active projects", int64(limit))
				}
			}
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get retrieves a project in the active workspace.
func (s *Service) Get(ctx context.Context, projectID id.ID) (*Project, error) {
	return s.repo.GetByID(ctx, projectID)
}

// Exists verifies a project is visible in the active workspace.
func (s *Service) Exists(ctx context.Context, projectID id.ID) error {
	_, err := s.repo.GetByID(ctx, projectID)
	return err
}

// List returns projects matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Project], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Archive moves a project to archived status, freeing an active slot.
func (s *Service) Archive(ctx context.Context, projectID id.ID) error {
	return s.repo.Archive(ctx, projectID)
}
