// Package guard decides what happens when a principal requests a protected
// view: render it, show a neutral loading state, or redirect to auth,
// onboarding, or the pending-payment screen.
//
// The decision order is fixed and evaluated on every pass. A later-stage
// redirect never fires while an earlier stage is still loading, so a slow
// membership lookup cannot flash the payment screen at a user who is about to
// be sent to login.
package guard

// Decision is the outcome of one guard evaluation.
type Decision int

const (
	// Loading: some dependency has not resolved yet; render a neutral
	// placeholder, no redirect.
	Loading Decision = iota

	// Allowed: render the protected view.
	Allowed

	// RedirectAuth: no authenticated principal.
	RedirectAuth

	// RedirectOnboarding: the principal has no workspace and the path is not
	// itself part of workspace bootstrap.
	RedirectOnboarding

	// RedirectPendingPayment: the active workspace's subscription is not
	// active and the path is not payment-exempt.
	RedirectPendingPayment
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Allowed:
		return "allowed"
	case RedirectAuth:
		return "redirect_auth"
	case RedirectOnboarding:
		return "redirect_onboarding"
	case RedirectPendingPayment:
		return "redirect_pending_payment"
	}
	return "unknown"
}

// State is the input to one evaluation.
type State struct {
	// Loading flags for each dependency. Any true short-circuits to Loading.
	AuthLoading         bool
	TenantLoading       bool
	SubscriptionLoading bool

	// Authenticated reports a valid principal.
	Authenticated bool

	// HasAnyWorkspace reports a non-empty membership list.
	HasAnyWorkspace bool

	// SubscriptionActive reports the active workspace's subscription
	// satisfies active/trialing. Meaningless when HasAnyWorkspace is false.
	SubscriptionActive bool

	// BootstrapPath marks paths that are themselves part of workspace
	// creation; the onboarding redirect must not loop on them.
	BootstrapPath bool

	// PaymentExempt marks paths reachable with an inactive subscription
	// (billing settings, the pending-payment view itself).
	PaymentExempt bool
}

// Evaluate runs the guard stages in fixed precedence order.
func Evaluate(s State) Decision {
	if s.AuthLoading || s.TenantLoading || s.SubscriptionLoading {
		return Loading
	}
	if !s.Authenticated {
		return RedirectAuth
	}
	if !s.HasAnyWorkspace && !s.BootstrapPath {
		return RedirectOnboarding
	}
	if s.HasAnyWorkspace && !s.SubscriptionActive && !s.PaymentExempt {
		return RedirectPendingPayment
	}
	return Allowed
}
