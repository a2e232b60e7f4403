package tenant

import (
	"sync"
	"sync/atomic"
	"time"
)

// Session is the per-principal tenant context: the full membership list and
// the single active workspace, kept consistent across loads.
//
// The active pointer is owned exclusively by the Manager; it changes only
// through Load and Switch. Readers get snapshots.
type Session struct {
	mu sync.RWMutex

	userID        string
	memberships   []Membership
	active        *Workspace
	subscriptions map[string]SubscriptionStatus

	loaded  bool
	loading bool

	lastUsed atomic.Int64 // unix seconds, for idle eviction
}

func newSession(userID string) *Session {
	s := &Session{
		userID:        userID,
		subscriptions: make(map[string]SubscriptionStatus),
	}
	s.touch()
	return s
}

func (s *Session) touch() {
	s.lastUsed.Store(time.Now().Unix())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(s.lastUsed.Load(), 0)
}

// UserID returns the owning principal's id.
func (s *Session) UserID() string {
	return s.userID
}

// Loaded reports whether at least one Load has completed successfully.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Loading reports whether a Load is currently in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// HasAnyWorkspace reports whether the membership list is non-empty.
func (s *Session) HasAnyWorkspace() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memberships) > 0
}

// Memberships returns a copy of the membership list.
func (s *Session) Memberships() []Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Membership, len(s.memberships))
	copy(out, s.memberships)
	return out
}

// ActiveWorkspace returns a copy of the active workspace, or nil when the
// principal has no memberships.
func (s *Session) ActiveWorkspace() *Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	ws := *s.active
	return &ws
}

// ActiveMembership returns the principal's membership for the active
// workspace, or nil.
func (s *Session) ActiveMembership() *Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	for i := range s.memberships {
		if s.memberships[i].WorkspaceID == s.active.ID {
			m := s.memberships[i]
			return &m
		}
	}
	return nil
}

// SubscriptionFor returns the last loaded subscription status for a
// workspace. Absence reports SubscriptionNone.
func (s *Session) SubscriptionFor(workspaceID string) SubscriptionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscriptions[workspaceID]
}

// ActiveSubscription returns the subscription status of the active workspace,
// or SubscriptionNone when there is no active workspace.
func (s *Session) ActiveSubscription() SubscriptionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return SubscriptionNone
	}
	return s.subscriptions[s.active.ID]
}

// isMember reports whether workspaceID is in the membership list.
func (s *Session) isMember(workspaceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.memberships {
		if s.memberships[i].WorkspaceID == workspaceID {
			return true
		}
	}
	return false
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// commit replaces the session state with freshly loaded data.
func (s *Session) commit(memberships []Membership, active *Workspace, subs map[string]SubscriptionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = memberships
	s.active = active
	s.subscriptions = subs
	s.loaded = true
	s.loading = false
}

// setActive points the session at a workspace already known to be a
// membership. Callers hold no lock.
func (s *Session) setActive(ws Workspace) {
	s.mu.Lock()
	s.active = &ws
	s.mu.Unlock()
}
