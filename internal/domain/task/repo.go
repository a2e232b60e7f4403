package task

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Repository is the workspace-scoped persistence contract for tasks.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, taskID id.ID) (*Task, error)
	ListByProject(ctx context.Context, projectID id.ID, filter domain.ListFilter) (domain.ListResult[*Task], error)
	Delete(ctx context.Context, taskID id.ID) error
}
