package project

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Repository is the workspace-scoped persistence contract for projects.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, projectID id.ID) (*Project, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Project], error)

	// CountActive counts projects in active status, for plan quota checks.
	CountActive(ctx context.Context) (int64, error)

	// Archive moves a project to archived status.
	Archive(ctx context.Context, projectID id.ID) error
}
