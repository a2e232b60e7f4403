package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"atelier/internal/plan"
	"atelier/pkg/logger"
)

// ManagerConfig configures session lifecycle behavior.
type ManagerConfig struct {
	// SessionIdleTimeout evicts sessions not touched for this long (0 = never).
	SessionIdleTimeout time.Duration

	// SweepPeriod is how often the eviction loop runs.
	SweepPeriod time.Duration
}

// DefaultManagerConfig returns production-safe defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		SessionIdleTimeout: 30 * time.Minute,
		SweepPeriod:        time.Minute,
	}
}

// Manager owns every tenant session. It is the single writer of the active
// workspace pointer: all mutation goes through Load and Switch, and
// persistence of the pointer happens only inside those methods.
// Thread-safe for concurrent access.
type Manager struct {
	config ManagerConfig
	dir    Directory
	store  ActiveStore

	sessions sync.Map // map[userID]*Session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

// NewManager creates a session manager backed by the given directory and
// active-workspace store.
func NewManager(cfg ManagerConfig, dir Directory, store ActiveStore, log *logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config: cfg,
		dir:    dir,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
		log:    log.WithComponent("tenant-manager"),
	}

	if cfg.SessionIdleTimeout > 0 && cfg.SweepPeriod > 0 {
		m.wg.Add(1)
		go m.evictionLoop()
	}

	return m
}

// Close stops background workers.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// Session returns the cached session for a principal, or nil when none is
// loaded. Callers wanting fresh state use Load.
func (m *Manager) Session(userID string) *Session {
	if val, ok := m.sessions.Load(userID); ok {
		sess := val.(*Session)
		sess.touch()
		return sess
	}
	return nil
}

// Load fetches the principal's memberships and reconciles the active
// workspace pointer:
//
//   - a remembered id still present in the fresh list is kept
//   - otherwise the first membership becomes active
//   - an empty list clears the pointer and the remembered id
//
// Subscription statuses for every membership workspace are fetched
// concurrently; all must complete and the first error wins. On transport
// error the prior session state is left untouched apart from the loading
// flag, and the error is returned for the caller to surface.
func (m *Manager) Load(ctx context.Context, userID string) (*Session, error) {
	val, _ := m.sessions.LoadOrStore(userID, newSession(userID))
	sess := val.(*Session)
	sess.touch()
	sess.setLoading(true)

	memberships, err := m.dir.ListMemberships(ctx, userID)
	if err != nil {
		sess.setLoading(false)
		return sess, fmt.Errorf("list memberships: %w", err)
	}

	subs, err := m.loadSubscriptions(ctx, memberships)
	if err != nil {
		sess.setLoading(false)
		return sess, err
	}

	// Result for a superseded load must not land in the session.
	if err := ctx.Err(); err != nil {
		sess.setLoading(false)
		return sess, err
	}

	active, remembered := m.resolveActive(ctx, userID, memberships)
	sess.commit(memberships, active, subs)

	if active != nil && active.ID != remembered {
		if err := m.store.Remember(ctx, userID, active.ID); err != nil {
			logger.Warn(ctx, "persist active workspace failed", "user_id", userID, "error", err)
		}
	}

	return sess, nil
}

// resolveActive picks the active workspace from the fresh membership list and
// the remembered pointer. Returns the pick (nil when no memberships) and the
// remembered id for change detection.
func (m *Manager) resolveActive(ctx context.Context, userID string, memberships []Membership) (*Workspace, string) {
	remembered, err := m.store.Recall(ctx, userID)
	if err != nil {
		// The store is a cache; failure to recall degrades to "nothing
		// remembered" rather than failing the load.
		logger.Warn(ctx, "recall active workspace failed", "user_id", userID, "error", err)
		remembered = ""
	}

	if len(memberships) == 0 {
		if remembered != "" {
			if err := m.store.Forget(ctx, userID); err != nil {
				logger.Warn(ctx, "forget active workspace failed", "user_id", userID, "error", err)
			}
		}
		return nil, remembered
	}

	for i := range memberships {
		if memberships[i].WorkspaceID == remembered {
			ws := memberships[i].Workspace()
			return &ws, remembered
		}
	}

	ws := memberships[0].Workspace()
	return &ws, remembered
}

// loadSubscriptions fans out one status lookup per membership workspace.
// All must complete; the first error wins.
func (m *Manager) loadSubscriptions(ctx context.Context, memberships []Membership) (map[string]SubscriptionStatus, error) {
	subs := make(map[string]SubscriptionStatus, len(memberships))
	if len(memberships) == 0 {
		return subs, nil
	}

	type result struct {
		workspaceID string
		status      SubscriptionStatus
		err         error
	}

	results := make(chan result, len(memberships))
	for i := range memberships {
		go func(wsID string) {
			status, err := m.dir.SubscriptionStatus(ctx, wsID)
			results <- result{workspaceID: wsID, status: status, err: err}
		}(memberships[i].WorkspaceID)
	}

	var firstErr error
	for range memberships {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("subscription status for %s: %w", r.workspaceID, r.err)
		}
		subs[r.workspaceID] = r.status
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return subs, nil
}

// Switch sets the active workspace. The target must be in the current
// membership list; anything else returns ErrNotAMember so stale client state
// surfaces instead of silently succeeding. Idempotent for valid ids.
func (m *Manager) Switch(ctx context.Context, userID, workspaceID string) error {
	sess := m.Session(userID)
	if sess == nil || !sess.Loaded() {
		loaded, err := m.Load(ctx, userID)
		if err != nil {
			return err
		}
		sess = loaded
	}

	if !sess.isMember(workspaceID) {
		return fmt.Errorf("switch to %s: %w", workspaceID, ErrNotAMember)
	}

	for _, ms := range sess.Memberships() {
		if ms.WorkspaceID == workspaceID {
			sess.setActive(ms.Workspace())
			break
		}
	}

	if err := m.store.Remember(ctx, userID, workspaceID); err != nil {
		logger.Warn(ctx, "persist active workspace failed", "user_id", userID, "error", err)
	}
	return nil
}

// CanCreateWorkspace reports whether the principal may create another
// workspace under the active workspace's plan. A principal with no active
// workspace may always create their first one.
func (m *Manager) CanCreateWorkspace(ctx context.Context, userID string) (bool, error) {
	sess := m.Session(userID)
	if sess == nil || !sess.Loaded() {
		loaded, err := m.Load(ctx, userID)
		if err != nil {
			return false, err
		}
		sess = loaded
	}

	active := sess.ActiveWorkspace()
	if active == nil {
		return true, nil
	}

	limit := plan.LimitsFor(active.Plan).MaxWorkspacesPerOwner
	if limit == plan.Unbounded {
		return true, nil
	}

	owned, err := m.dir.CountOwnedWorkspaces(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count owned workspaces: %w", err)
	}
	return limit.Allows(owned), nil
}

// Invalidate drops the cached session so the next request reloads it.
// Called after membership or plan mutations.
func (m *Manager) Invalidate(userID string) {
	m.sessions.Delete(userID)
}

func (m *Manager) evictionLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.SweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.config.SessionIdleTimeout)
	m.sessions.Range(func(key, val any) bool {
		sess := val.(*Session)
		if sess.idleSince().Before(cutoff) {
			m.sessions.Delete(key)
			m.log.Debugw("evicted idle tenant session", "user_id", key)
		}
		return true
	})
}
