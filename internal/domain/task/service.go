package task

import (
	"context"

	appctx "atelier/internal/core/context"
	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// ProjectChecker verifies a project exists in the active workspace.
// Satisfied by the project service; breaks the package cycle.
type ProjectChecker interface {
	Exists(ctx context.Context, projectID id.ID) error
}

// Service provides business logic for tasks.
type Service struct {
	repo     Repository
	projects ProjectChecker
}

// NewService creates a task service.
func NewService(repo Repository, projects ProjectChecker) *Service {
	return &Service{repo: repo, projects: projects}
}

// Create validates and stores a task. The parent project must exist in the
// same workspace; the scoped gateway guarantees the lookup cannot see another
// workspace's projects.
func (s *Service) Create(ctx context.Context, t *Task) (*Task, error) {
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.projects.Exists(ctx, t.ProjectID); err != nil {
		return nil, err
	}

	t.CreatedBy = appctx.GetUserID(ctx)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update validates and persists changes.
func (s *Service) Update(ctx context.Context, t *Task) (*Task, error) {
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get retrieves a task in the active workspace.
func (s *Service) Get(ctx context.Context, taskID id.ID) (*Task, error) {
	return s.repo.GetByID(ctx, taskID)
}

// ListByProject returns a project's tasks.
func (s *Service) ListByProject(ctx context.Context, projectID id.ID, filter domain.ListFilter) (domain.ListResult[*Task], error) {
	filter.Normalize()
	return s.repo.ListByProject(ctx, projectID, filter)
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, taskID id.ID) error {
	return s.repo.Delete(ctx, taskID)
}
