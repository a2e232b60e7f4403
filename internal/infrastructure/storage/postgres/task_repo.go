package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/task"
)

// TaskRepo is the scoped repository for tasks.
type TaskRepo struct {
	scopedRepo[*task.Task]
}

// NewTaskRepo creates the task repository.
func NewTaskRepo(txm *TxManager) *TaskRepo {
	return &TaskRepo{
		scopedRepo: newScopedRepo(txm, "tasks", func() *task.Task { return &task.Task{} }),
	}
}

func (r *TaskRepo) Create(ctx context.Context, t *task.Task) error {
	return r.create(ctx, t)
}

func (r *TaskRepo) Update(ctx context.Context, t *task.Task) error {
	return r.update(ctx, t)
}

func (r *TaskRepo) GetByID(ctx context.Context, taskID id.ID) (*task.Task, error) {
	return r.getByID(ctx, taskID)
}

func (r *TaskRepo) ListByProject(ctx context.Context, projectID id.ID, filter domain.ListFilter) (domain.ListResult[*task.Task], error) {
	q, err := r.baseSelect(ctx)
	if err != nil {
		return domain.ListResult[*task.Task]{}, err
	}

	q = q.Where(squirrel.Eq{"project_id": projectID})
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"title": "%" + filter.Search + "%"})
	}

	return r.list(ctx, q, filter)
}

func (r *TaskRepo) Delete(ctx context.Context, taskID id.ID) error {
	wsID, err := r.scope(ctx)
	if err != nil {
		return err
	}

	sql, args, err := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"workspace_id": wsID}).
		Where(squirrel.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	matched, err := r.exec(ctx, sql, args)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !matched {
		return apperror.NewNotFound("task", taskID.String())
	}
	return nil
}

var _ task.Repository = (*TaskRepo)(nil)
