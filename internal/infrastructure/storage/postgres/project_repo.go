package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/project"
)

// ProjectRepo is the scoped repository for projects.
type ProjectRepo struct {
	scopedRepo[*project.Project]
}

// NewProjectRepo creates the project repository.
func NewProjectRepo(txm *TxManager) *ProjectRepo {
	return &ProjectRepo{
		scopedRepo: newScopedRepo(txm, "projects", func() *project.Project { return &project.Project{} }),
	}
}

func (r *ProjectRepo) Create(ctx context.Context, p *project.Project) error {
	return r.create(ctx, p)
}

func (r *ProjectRepo) Update(ctx context.Context, p *project.Project) error {
	return r.update(ctx, p)
}

func (r *ProjectRepo) GetByID(ctx context.Context, projectID id.ID) (*project.Project, error) {
	return r.getByID(ctx, projectID)
}

func (r *ProjectRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*project.Project], error) {
	q, err := r.baseSelect(ctx)
	if err != nil {
		return domain.ListResult[*project.Project]{}, err
	}

	if !filter.IncludeArchived {
		q = q.Where(squirrel.NotEq{"status": project.StatusArchived})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}

	return r.list(ctx, q, filter)
}

func (r *ProjectRepo) CountActive(ctx context.Context) (int64, error) {
	return r.count(ctx, squirrel.Eq{"status": project.StatusActive})
}

var _ project.Repository = (*ProjectRepo)(nil)

// buildArchive builds the scoped status change without executing it.
func (r *ProjectRepo) buildArchive(ctx context.Context, projectID id.ID) (string, []any, error) {
	wsID, err := r.scope(ctx)
	if err != nil {
		return "", nil, err
	}
	return r.Builder().
		Update(r.tableName).
		Set("status", project.StatusArchived).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"workspace_id": wsID}).
		Where(squirrel.Eq{"id": projectID}).
		ToSql()
}

// Archive marks a project archived.
func (r *ProjectRepo) Archive(ctx context.Context, projectID id.ID) error {
	sql, args, err := r.buildArchive(ctx, projectID)
	if err != nil {
		return err
	}
	matched, err := r.exec(ctx, sql, args)
	if err != nil {
		return fmt.Errorf("archive project: %w", err)
	}
	if !matched {
		return fmt.Errorf("archive project: no such project in workspace")
	}
	return nil
}
