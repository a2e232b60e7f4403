package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/client"
)

// ClientRepo is the scoped repository for the client roster.
type ClientRepo struct {
	scopedRepo[*client.Client]
}

// NewClientRepo creates the client repository.
func NewClientRepo(txm *TxManager) *ClientRepo {
	return &ClientRepo{
		scopedRepo: newScopedRepo(txm, "clients", func() *client.Client { return &client.Client{} }),
	}
}

func (r *ClientRepo) Create(ctx context.Context, c *client.Client) error {
	return r.create(ctx, c)
}

func (r *ClientRepo) Update(ctx context.Context, c *client.Client) error {
	return r.update(ctx, c)
}

func (r *ClientRepo) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	return r.getByID(ctx, clientID)
}

func (r *ClientRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*client.Client], error) {
	q, err := r.baseSelect(ctx)
	if err != nil {
		return domain.ListResult[*client.Client]{}, err
	}

	if !filter.IncludeArchived {
		q = q.Where(squirrel.Eq{"archived": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"company": pattern},
		})
	}

	return r.list(ctx, q, filter)
}

func (r *ClientRepo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, squirrel.Eq{"archived": false})
}

func (r *ClientRepo) Archive(ctx context.Context, clientID id.ID) error {
	wsID, err := r.scope(ctx)
	if err != nil {
		return err
	}

	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("archived", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"workspace_id": wsID}).
		Where(squirrel.Eq{"id": clientID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}

	matched, err := r.exec(ctx, sql, args)
	if err != nil {
		return fmt.Errorf("archive client: %w", err)
	}
	if !matched {
		return apperror.NewNotFound("client", clientID.String())
	}
	return nil
}

var _ client.Repository = (*ClientRepo)(nil)
