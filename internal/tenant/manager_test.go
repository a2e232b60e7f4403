package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/plan"
	"atelier/pkg/logger"
)

type fakeDirectory struct {
	memberships map[string][]Membership
	subs        map[string]SubscriptionStatus
	owned       map[string]int64

	listErr error
	subErr  error
}

func (f *fakeDirectory) ListMemberships(ctx context.Context, userID string) ([]Membership, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.memberships[userID], nil
}

func (f *fakeDirectory) CountOwnedWorkspaces(ctx context.Context, userID string) (int64, error) {
	return f.owned[userID], nil
}

func (f *fakeDirectory) SubscriptionStatus(ctx context.Context, workspaceID string) (SubscriptionStatus, error) {
	if f.subErr != nil {
		return SubscriptionNone, f.subErr
	}
	return f.subs[workspaceID], nil
}

func membership(userID, wsID, name string, tier plan.Tier, role Role) Membership {
	return Membership{
		WorkspaceID:   wsID,
		UserID:        userID,
		Role:          role,
		CreatedAt:     time.Now(),
		WorkspaceName: name,
		WorkspacePlan: tier,
	}
}

func newTestManager(t *testing.T, dir Directory, store ActiveStore) *Manager {
	t.Helper()
	m := NewManager(ManagerConfig{}, dir, store, logger.Default())
	t.Cleanup(m.Close)
	return m
}

func TestLoadEmptyMemberships(t *testing.T) {
	dir := &fakeDirectory{memberships: map[string][]Membership{}}
	store := NewMemoryStore()
	require.NoError(t, store.Remember(context.Background(), "u1", "ws-stale"))

	m := newTestManager(t, dir, store)
	sess, err := m.Load(context.Background(), "u1")
	require.NoError(t, err)

	assert.Nil(t, sess.ActiveWorkspace())
	assert.False(t, sess.HasAnyWorkspace())
	assert.Equal(t, SubscriptionNone, sess.ActiveSubscription())

	// A stale remembered id must be cleared.
	remembered, err := store.Recall(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, remembered)
}

func TestLoadKeepsRememberedWhenStillMember(t *testing.T) {
	dir := &fakeDirectory{
		memberships: map[string][]Membership{
			"u1": {
				membership("u1", "ws-a", "Studio A", plan.TierStudio, RoleOwner),
				membership("u1", "ws-b", "Firm B", plan.TierFirm, RoleMember),
			},
		},
		subs: map[string]SubscriptionStatus{
			"ws-a": SubscriptionActive,
			"ws-b": SubscriptionTrialing,
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Remember(context.Background(), "u1", "ws-b"))

	m := newTestManager(t, dir, store)
	sess, err := m.Load(context.Background(), "u1")
	require.NoError(t, err)

	active := sess.ActiveWorkspace()
	require.NotNil(t, active)
	assert.Equal(t, "ws-b", active.ID)
	assert.Equal(t, SubscriptionTrialing, sess.ActiveSubscription())
}

func TestLoadFallsBackToFirstMembership(t *testing.T) {
	dir := &fakeDirectory{
		memberships: map[string][]Membership{
			"u1": {
				membership("u1", "ws-a", "Studio A", plan.TierStudio, RoleOwner),
				membership("u1", "ws-b", "Firm B", plan.TierFirm, RoleMember),
			},
		},
		subs: map[string]SubscriptionStatus{"ws-a": SubscriptionActive, "ws-b": SubscriptionActive},
	}
	store := NewMemoryStore()
	// Remembered id belongs to a workspace the principal no longer joins.
	require.NoError(t, store.Remember(context.Background(), "u1", "ws-foreign"))

	m := newTestManager(t, dir, store)
	sess, err := m.Load(context.Background(), "u1")
	require.NoError(t, err)

	active := sess.ActiveWorkspace()
	require.NotNil(t, active)
	assert.Equal(t, "ws-a", active.ID)

	remembered, _ := store.Recall(context.Background(), "u1")
	assert.Equal(t, "ws-a", remembered, "fallback pick must be persisted")
}

func TestLoadTransportErrorKeepsPriorState(t *testing.T) {
	dir := &fakeDirectory{
		memberships: map[string][]Membership{
			"u1": {membership("u1", "ws-a", "Studio A", plan.TierStudio, RoleOwner)},
		},
		subs: map[string]SubscriptionStatus{"ws-a": SubscriptionActive},
	}
	store := NewMemoryStore()
	m := newTestManager(t, dir, store)

	sess, err := m.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, sess.ActiveWorkspace())

	dir.listErr = errors.New("connection refused")
	sess2, err := m.Load(context.Background(), "u1")
	require.Error(t, err)

	// Prior state untouched, only the loading flag cleared.
	assert.Same(t, sess, sess2)
	assert.False(t, sess2.Loading())
	require.NotNil(t, sess2.ActiveWorkspace())
	assert.Equal(t, "ws-a", sess2.ActiveWorkspace().ID)
}

func TestLoadSubscriptionErrorWins(t *testing.T) {
	dir := &fakeDirectory{
		memberships: map[string][]Membership{
			"u1": {membership("u1", "ws-a", "Studio A", plan.TierStudio, RoleOwner)},
		},
		subErr: errors.New("rpc failed"),
	}
	m := newTestManager(t, dir, NewMemoryStore())

	sess, err := m.Load(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, sess.Loaded())
}

func TestSwitchStrictAndIdempotent(t *testing.T) {
	dir := &fakeDirectory{
		memberships: map[string][]Membership{
			"u1": {
				membership("u1", "ws-a", "Studio A", plan.TierStudio, RoleOwner),
				membership("u1", "ws-b", "Firm B", plan.TierFirm, RoleMember),
			},
		},
		subs: map[string]SubscriptionStatus{"ws-a": SubscriptionActive, "ws-b": SubscriptionActive},
	}
	store := NewMemoryStore()
	m := newTestManager(t, dir, store)

	_, err := m.Load(context.Background(), "u1")
	require.NoError(t, err)

	// Foreign id is an error, and the active pointer is untouched.
	err = m.Switch(context.Background(), "u1", "ws-zzz")
	require.ErrorIs(t, err, ErrNotAMember)
	assert.Equal(t, "ws-a", m.Session("u1").ActiveWorkspace().ID)

	require.NoError(t, m.Switch(context.Background(), "u1", "ws-b"))
	assert.Equal(t, "ws-b", m.Session("u1").ActiveWorkspace().ID)

	// Idempotent: switching again changes nothing.
	require.NoError(t, m.Switch(context.Background(), "u1", "ws-b"))
	assert.Equal(t, "ws-b", m.Session("u1").ActiveWorkspace().ID)

	remembered, _ := store.Recall(context.Background(), "u1")
	assert.Equal(t, "ws-b", remembered)
}

func TestCanCreateWorkspace(t *testing.T) {
	dir := &fakeDirectory{
		memberships: map[string][]Membership{
			"solo": {membership("solo", "ws-a", "Solo", plan.TierStarter, RoleOwner)},
			"firm": {membership("firm", "ws-b", "Big Firm", plan.TierFirm, RoleOwner)},
		},
		subs:  map[string]SubscriptionStatus{"ws-a": SubscriptionActive, "ws-b": SubscriptionActive},
		owned: map[string]int64{"solo": 1, "firm": 40},
	}
	m := newTestManager(t, dir, NewMemoryStore())

	// No workspace at all: bootstrap case, always creatable.
	ok, err := m.CanCreateWorkspace(context.Background(), "newcomer")
	require.NoError(t, err)
	assert.True(t, ok)

	// Starter caps owned workspaces at 1.
	ok, err = m.CanCreateWorkspace(context.Background(), "solo")
	require.NoError(t, err)
	assert.False(t, ok)

	// Firm tier is unbounded.
	ok, err = m.CanCreateWorkspace(context.Background(), "firm")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanceledLoadIsDiscarded(t *testing.T) {
	dir := &fakeDirectory{
		memberships: map[string][]Membership{
			"u1": {membership("u1", "ws-a", "Studio A", plan.TierStudio, RoleOwner)},
		},
		subs: map[string]SubscriptionStatus{"ws-a": SubscriptionActive},
	}
	m := newTestManager(t, dir, NewMemoryStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess, err := m.Load(ctx, "u1")
	require.Error(t, err)
	assert.False(t, sess.Loaded(), "canceled load must not commit state")
}
