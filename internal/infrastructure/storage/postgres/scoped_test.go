package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

type scopedFixture struct {
	ID          string `db:"id"`
	WorkspaceID string `db:"workspace_id"`
	Title       string `db:"title"`
	Version     int    `db:"version"`
}

func scopedCtx(wsID string) context.Context {
	return tenant.WithWorkspace(context.Background(), &tenant.Workspace{
		ID:   wsID,
		Name: "Test Studio",
		Plan: plan.TierStudio,
	})
}

func newFixtureRepo() scopedRepo[*scopedFixture] {
	return newScopedRepo(nil, "fixtures", func() *scopedFixture { return &scopedFixture{} })
}

func TestScopedRepo_BaseSelectCarriesWorkspaceFilter(t *testing.T) {
	repo := newFixtureRepo()

	q, err := repo.baseSelect(scopedCtx("ws-1"))
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM fixtures")
	assert.Contains(t, sql, "workspace_id = $1")
	assert.Equal(t, []any{"ws-1"}, args)
}

func TestScopedRepo_MissingScopeFailsHard(t *testing.T) {
	repo := newFixtureRepo()

	_, err := repo.baseSelect(context.Background())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeWorkspaceScopeMissing, appErr.Code)

	_, err = repo.scope(context.Background())
	require.Error(t, err)
}

func TestScopedRepo_FilterSurvivesExtraConditions(t *testing.T) {
	repo := newFixtureRepo()

	q, err := repo.baseSelect(scopedCtx("ws-1"))
	require.NoError(t, err)

	q = q.Where("title ILIKE ?", "%chair%")
	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "workspace_id = $1")
	assert.Len(t, args, 2)
	assert.Equal(t, "ws-1", args[0])
}

func TestScopedRepo_DistinctWorkspacesBindDistinctArgs(t *testing.T) {
	repo := newFixtureRepo()

	qa, err := repo.baseSelect(scopedCtx("ws-a"))
	require.NoError(t, err)
	qb, err := repo.baseSelect(scopedCtx("ws-b"))
	require.NoError(t, err)

	sqlA, argsA, err := qa.ToSql()
	require.NoError(t, err)
	sqlB, argsB, err := qb.ToSql()
	require.NoError(t, err)

	assert.Equal(t, sqlA, sqlB)
	assert.NotEqual(t, argsA, argsB)
}

func TestProjectRepo_ArchiveIsScoped(t *testing.T) {
	repo := NewProjectRepo(nil)
	projectID := id.New()

	sql, args, err := repo.buildArchive(scopedCtx("ws-1"), projectID)
	require.NoError(t, err)

	assert.Contains(t, sql, "UPDATE projects")
	assert.Contains(t, sql, "workspace_id =")
	assert.Contains(t, args, "ws-1")
	assert.Contains(t, args, projectID)

	_, _, err = repo.buildArchive(context.Background(), projectID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeWorkspaceScopeMissing))
}

func TestListFilter_NormalizeBounds(t *testing.T) {
	f := domain.ListFilter{}
	f.Normalize()
	assert.Equal(t, 50, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = domain.ListFilter{Limit: 9000, Offset: -3}
	f.Normalize()
	assert.Equal(t, 500, f.Limit)
	assert.Equal(t, 0, f.Offset)
}
