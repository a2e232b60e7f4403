package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/tenant"
)

// scopedRepo is the single sanctioned path to workspace-scoped tables. Every
// statement it builds carries an equality filter on workspace_id taken from
// the request context, and no method can drop that filter.
//
// The constructor is unexported: the closed set of exported repositories in
// this package (ProjectRepo, ClientRepo, TaskRepo) is the entity allow-list.
// A missing workspace id is a hard stop, not a recoverable condition —
// silently omitting the filter would leak data across workspaces.
type scopedRepo[T any] struct {
	txm        *TxManager
	tableName  string
	selectCols []string
	newFn      func() T
}

func newScopedRepo[T any](txm *TxManager, tableName string, newFn func() T) scopedRepo[T] {
	return scopedRepo[T]{
		txm:        txm,
		tableName:  tableName,
		selectCols: ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholder format.
func (r *scopedRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// scope returns the active workspace id or fails fast.
func (r *scopedRepo[T]) scope(ctx context.Context) (string, error) {
	wsID := tenant.GetWorkspaceID(ctx)
	if wsID == "" {
		return "", apperror.NewWorkspaceScopeMissing(r.tableName)
	}
	return wsID, nil
}

// baseSelect builds a SELECT already bound to the active workspace.
func (r *scopedRepo[T]) baseSelect(ctx context.Context) (squirrel.SelectBuilder, error) {
	wsID, err := r.scope(ctx)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"workspace_id": wsID}), nil
}

// create inserts an entity, stamping workspace_id from context. Whatever the
// struct carried is overwritten: context is the only source of scope.
func (r *scopedRepo[T]) create(ctx context.Context, entity T) error {
	wsID, err := r.scope(ctx)
	if err != nil {
		return err
	}

	data := StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}
	data["workspace_id"] = wsID

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// update modifies an entity with optimistic locking, inside the workspace
// scope. A row in another workspace is unreachable even with a matching id.
func (r *scopedRepo[T]) update(ctx context.Context, entity T) error {
	wsID, err := r.scope(ctx)
	if err != nil {
		return err
	}

	data := StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "version", "workspace_id", "created_at", "created_by":
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"workspace_id": wsID}).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("record was modified concurrently or does not exist").
			WithDetail("entity", r.tableName).
			WithDetail("id", entityID)
	}
	return nil
}

// getByID retrieves one entity within the workspace scope.
func (r *scopedRepo[T]) getByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	q, err := r.baseSelect(ctx)
	if err != nil {
		return entity, err
	}
	q = q.Where(squirrel.Eq{"id": entityID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return entity, fmt.Errorf("get by id: %w", err)
	}
	return entity, nil
}

// count counts rows matching extra conditions within the workspace scope.
func (r *scopedRepo[T]) count(ctx context.Context, conds ...squirrel.Sqlizer) (int64, error) {
	wsID, err := r.scope(ctx)
	if err != nil {
		return 0, err
	}

	q := r.Builder().
		Select("COUNT(*)").
		From(r.tableName).
		Where(squirrel.Eq{"workspace_id": wsID})
	for _, c := range conds {
		q = q.Where(c)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.tableName, err)
	}
	return total, nil
}

// list runs a paginated select with a total count.
func (r *scopedRepo[T]) list(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build list query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	result.Items = items
	return result, nil
}

// exec runs a scoped statement and reports whether any row matched.
func (r *scopedRepo[T]) exec(ctx context.Context, sql string, args []any) (bool, error) {
	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("exec %s: %w", r.tableName, err)
	}
	return tag.RowsAffected() > 0, nil
}
