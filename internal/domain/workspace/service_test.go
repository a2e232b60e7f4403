package workspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/core/id"
	"atelier/internal/plan"
	"atelier/internal/tenant"
)

type fakeRepo struct {
	workspaces  map[string]*tenant.Workspace
	members     map[string]map[string]*tenant.Membership // workspaceID -> userID
	subs        map[string]*tenant.Subscription
	invitations map[string]*Invitation // keyed by token hash

	planUpdates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		workspaces:  make(map[string]*tenant.Workspace),
		members:     make(map[string]map[string]*tenant.Membership),
		subs:        make(map[string]*tenant.Subscription),
		invitations: make(map[string]*Invitation),
	}
}

func (f *fakeRepo) CreateWorkspace(ctx context.Context, ws *tenant.Workspace) error {
	f.workspaces[ws.ID] = ws
	return nil
}

func (f *fakeRepo) GetWorkspace(ctx context.Context, workspaceID string) (*tenant.Workspace, error) {
	ws, ok := f.workspaces[workspaceID]
	if !ok {
		return nil, apperror.NewNotFound("workspace", workspaceID)
	}
	return ws, nil
}

func (f *fakeRepo) UpdatePlan(ctx context.Context, workspaceID string, tier plan.Tier) error {
	f.planUpdates++
	f.workspaces[workspaceID].Plan = tier
	return nil
}

func (f *fakeRepo) AddMember(ctx context.Context, m *tenant.Membership) error {
	if f.members[m.WorkspaceID] == nil {
		f.members[m.WorkspaceID] = make(map[string]*tenant.Membership)
	}
	f.members[m.WorkspaceID][m.UserID] = m
	return nil
}

func (f *fakeRepo) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	delete(f.members[workspaceID], userID)
	return nil
}

func (f *fakeRepo) GetMember(ctx context.Context, workspaceID, userID string) (*tenant.Membership, error) {
	m, ok := f.members[workspaceID][userID]
	if !ok {
		return nil, apperror.NewNotFound("membership", userID)
	}
	return m, nil
}

func (f *fakeRepo) ListMembers(ctx context.Context, workspaceID string) ([]tenant.Membership, error) {
	var out []tenant.Membership
	for _, m := range f.members[workspaceID] {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeRepo) CountMembers(ctx context.Context, workspaceID string) (int64, error) {
	return int64(len(f.members[workspaceID])), nil
}

func (f *fakeRepo) UpsertSubscription(ctx context.Context, sub *tenant.Subscription) error {
	f.subs[sub.WorkspaceID] = sub
	return nil
}

func (f *fakeRepo) GetSubscription(ctx context.Context, workspaceID string) (*tenant.Subscription, error) {
	return f.subs[workspaceID], nil
}

func (f *fakeRepo) CreateInvitation(ctx context.Context, inv *Invitation) error {
	f.invitations[inv.TokenHash] = inv
	return nil
}

func (f *fakeRepo) GetInvitationByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error) {
	inv, ok := f.invitations[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("invitation", "token")
	}
	return inv, nil
}

func (f *fakeRepo) MarkInvitationAccepted(ctx context.Context, invitationID id.ID) error {
	for _, inv := range f.invitations {
		if inv.ID == invitationID {
			now := time.Now().UTC()
			inv.AcceptedAt = &now
			return nil
		}
	}
	return apperror.NewNotFound("invitation", invitationID.String())
}

func (f *fakeRepo) ListInvitations(ctx context.Context, workspaceID string) ([]Invitation, error) {
	var out []Invitation
	for _, inv := range f.invitations {
		if inv.WorkspaceID == workspaceID && inv.IsOpen() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

type fakeTenancy struct {
	canCreate   bool
	invalidated []string
}

func (f *fakeTenancy) CanCreateWorkspace(ctx context.Context, userID string) (bool, error) {
	return f.canCreate, nil
}

func (f *fakeTenancy) Invalidate(userID string) {
	f.invalidated = append(f.invalidated, userID)
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) LogEvent(ctx context.Context, workspaceID, action string, details map[string]any) error {
	f.actions = append(f.actions, action)
	return nil
}

// nopTx runs the function directly; the fakes have no transactions.
type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func principalCtx(userID string, admin bool) context.Context {
	return appctx.WithPrincipal(context.Background(), &appctx.Principal{
		UserID:          userID,
		Email:           userID + "@example.com",
		IsPlatformAdmin: admin,
	})
}

func newTestService(repo *fakeRepo, tenancy *fakeTenancy, audit *fakeAudit) *Service {
	return NewService(repo, nopTx{}, tenancy, audit)
}

// seedWorkspace installs a workspace with one owner directly into the fakes.
func seedWorkspace(repo *fakeRepo, wsID string, tier plan.Tier, ownerID string) {
	now := time.Now().UTC()
	repo.workspaces[wsID] = &tenant.Workspace{
		ID: wsID, Name: "Seeded", Plan: tier, CreatedAt: now, UpdatedAt: now,
	}
	repo.members[wsID] = map[string]*tenant.Membership{
		ownerID: {WorkspaceID: wsID, UserID: ownerID, Role: tenant.RoleOwner, CreatedAt: now},
	}
}

func TestCreateRequiresPrincipal(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeTenancy{canCreate: true}, &fakeAudit{})

	_, err := svc.Create(context.Background(), CreateRequest{Name: "Studio"})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestCreateEnforcesWorkspaceQuota(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeTenancy{canCreate: false}, &fakeAudit{})

	_, err := svc.Create(principalCtx("u1", false), CreateRequest{Name: "Second Studio"})
	assert.True(t, apperror.IsCode(err, apperror.CodePlanLimitReached))
}

func TestCreateWritesOwnerAndIncompleteSubscription(t *testing.T) {
	repo := newFakeRepo()
	tenancy := &fakeTenancy{canCreate: true}
	audit := &fakeAudit{}
	svc := newTestService(repo, tenancy, audit)

	ws, err := svc.Create(principalCtx("u1", false), CreateRequest{Name: "Maison Nord"})
	require.NoError(t, err)

	assert.Equal(t, plan.TierStarter, ws.Plan, "tier defaults to starter")

	member, err := repo.GetMember(context.Background(), ws.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, tenant.RoleOwner, member.Role)

	sub := repo.subs[ws.ID]
	require.NotNil(t, sub)
	assert.Equal(t, tenant.SubscriptionIncomplete, sub.Status)

	assert.Contains(t, tenancy.invalidated, "u1")
	assert.Contains(t, audit.actions, "workspace_created")
}

func TestChangePlanSameTierIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStudio, "u1")
	svc := newTestService(repo, &fakeTenancy{}, &fakeAudit{})

	ws, err := svc.ChangePlan(principalCtx("u1", false), "ws-1", plan.TierStudio)
	require.NoError(t, err)
	assert.Equal(t, plan.TierStudio, ws.Plan)
	assert.Zero(t, repo.planUpdates)
}

func TestChangePlanInvalidatesMembers(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStarter, "u1")
	repo.members["ws-1"]["u2"] = &tenant.Membership{
		WorkspaceID: "ws-1", UserID: "u2", Role: tenant.RoleMember,
	}
	tenancy := &fakeTenancy{}
	audit := &fakeAudit{}
	svc := newTestService(repo, tenancy, audit)

	ws, err := svc.ChangePlan(principalCtx("u1", false), "ws-1", plan.TierFirm)
	require.NoError(t, err)
	assert.Equal(t, plan.TierFirm, ws.Plan)

	assert.ElementsMatch(t, []string{"u1", "u2"}, tenancy.invalidated)
	assert.Contains(t, audit.actions, "plan_changed")
}

func TestChangePlanRequiresOwnerOrAdmin(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStarter, "u1")
	repo.members["ws-1"]["u2"] = &tenant.Membership{
		WorkspaceID: "ws-1", UserID: "u2", Role: tenant.RoleMember,
	}
	svc := newTestService(repo, &fakeTenancy{}, &fakeAudit{})

	_, err := svc.ChangePlan(principalCtx("u2", false), "ws-1", plan.TierFirm)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	_, err = svc.ChangePlan(principalCtx("outsider", false), "ws-1", plan.TierFirm)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotAMember))
}

func TestChangePlanPlatformAdminBypassesMembership(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStarter, "u1")
	svc := newTestService(repo, &fakeTenancy{}, &fakeAudit{})

	ws, err := svc.ChangePlan(principalCtx("support", true), "ws-1", plan.TierStudio)
	require.NoError(t, err)
	assert.Equal(t, plan.TierStudio, ws.Plan)
}

func TestInviteLockedOnStarter(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStarter, "u1")
	svc := newTestService(repo, &fakeTenancy{}, &fakeAudit{})

	_, _, err := svc.Invite(principalCtx("u1", false), "ws-1", InviteRequest{Email: "new@example.com"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeFeatureLocked))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.NotEmpty(t, appErr.Details["required_plan"])
}

func TestInviteEnforcesMemberSeats(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStudio, "u1")
	for i := 1; i < 15; i++ {
		uid := string(rune('a' + i))
		repo.members["ws-1"][uid] = &tenant.Membership{
			WorkspaceID: "ws-1", UserID: uid, Role: tenant.RoleMember,
		}
	}
	svc := newTestService(repo, &fakeTenancy{}, &fakeAudit{})

	_, _, err := svc.Invite(principalCtx("u1", false), "ws-1", InviteRequest{Email: "one-too-many@example.com"})
	assert.True(t, apperror.IsCode(err, apperror.CodePlanLimitReached))
}

func TestInviteStoresOnlyTokenHash(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStudio, "u1")
	audit := &fakeAudit{}
	svc := newTestService(repo, &fakeTenancy{}, audit)

	inv, token, err := svc.Invite(principalCtx("u1", false), "ws-1", InviteRequest{Email: "new@example.com"})
	require.NoError(t, err)

	require.NotEmpty(t, token)
	assert.NotEqual(t, token, inv.TokenHash)
	assert.Equal(t, tenant.RoleMember, inv.Role, "role defaults to member")
	assert.True(t, inv.ExpiresAt.After(time.Now()))
	assert.Contains(t, audit.actions, "invitation_sent")
}

func TestAcceptAddsMembershipAndClosesInvitation(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStudio, "u1")
	tenancy := &fakeTenancy{}
	svc := newTestService(repo, tenancy, &fakeAudit{})

	_, token, err := svc.Invite(principalCtx("u1", false), "ws-1", InviteRequest{Email: "new@example.com", Role: tenant.RoleAdmin})
	require.NoError(t, err)

	member, err := svc.Accept(principalCtx("u2", false), token)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", member.WorkspaceID)
	assert.Equal(t, tenant.RoleAdmin, member.Role)
	assert.Contains(t, tenancy.invalidated, "u2")

	// Second redemption must fail.
	_, err = svc.Accept(principalCtx("u3", false), token)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestAcceptExpiredInvitation(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStudio, "u1")
	svc := newTestService(repo, &fakeTenancy{}, &fakeAudit{})

	_, token, err := svc.Invite(principalCtx("u1", false), "ws-1", InviteRequest{Email: "late@example.com"})
	require.NoError(t, err)

	for _, inv := range repo.invitations {
		inv.ExpiresAt = time.Now().Add(-time.Hour)
	}

	_, err = svc.Accept(principalCtx("u2", false), token)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestRemoveMemberOwnerProtected(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStudio, "u1")
	repo.members["ws-1"]["u2"] = &tenant.Membership{
		WorkspaceID: "ws-1", UserID: "u2", Role: tenant.RoleMember,
	}
	tenancy := &fakeTenancy{}
	svc := newTestService(repo, tenancy, &fakeAudit{})

	err := svc.RemoveMember(principalCtx("u1", false), "ws-1", "u1")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	require.NoError(t, svc.RemoveMember(principalCtx("u1", false), "ws-1", "u2"))
	_, err = repo.GetMember(context.Background(), "ws-1", "u2")
	assert.Error(t, err)
	assert.Contains(t, tenancy.invalidated, "u2")
}

func TestUpdateSubscriptionStatusInvalidatesMembers(t *testing.T) {
	repo := newFakeRepo()
	seedWorkspace(repo, "ws-1", plan.TierStudio, "u1")
	tenancy := &fakeTenancy{}
	audit := &fakeAudit{}
	svc := newTestService(repo, tenancy, audit)

	err := svc.UpdateSubscriptionStatus(context.Background(), &tenant.Subscription{
		WorkspaceID: "ws-1",
		Status:      tenant.SubscriptionPastDue,
	})
	require.NoError(t, err)

	assert.Equal(t, tenant.SubscriptionPastDue, repo.subs["ws-1"].Status)
	assert.Contains(t, tenancy.invalidated, "u1")
	assert.Contains(t, audit.actions, "subscription_updated")
}
