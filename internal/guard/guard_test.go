package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluatePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Decision
	}{
		{
			name:  "auth still loading masks everything",
			state: State{AuthLoading: true},
			want:  Loading,
		},
		{
			name: "tenant loading masks later redirects",
			state: State{
				TenantLoading: true,
				Authenticated: true,
			},
			want: Loading,
		},
		{
			name: "subscription loading masks payment redirect",
			state: State{
				SubscriptionLoading: true,
				Authenticated:       true,
				HasAnyWorkspace:     true,
			},
			want: Loading,
		},
		{
			name:  "unauthenticated",
			state: State{},
			want:  RedirectAuth,
		},
		{
			name: "unauthenticated wins over missing workspace",
			state: State{
				HasAnyWorkspace: false,
				BootstrapPath:   false,
			},
			want: RedirectAuth,
		},
		{
			name: "zero workspaces on protected path goes to onboarding, never payment",
			state: State{
				Authenticated:      true,
				HasAnyWorkspace:    false,
				SubscriptionActive: false,
			},
			want: RedirectOnboarding,
		},
		{
			name: "zero workspaces on bootstrap path allowed",
			state: State{
				Authenticated:   true,
				HasAnyWorkspace: false,
				BootstrapPath:   true,
			},
			want: Allowed,
		},
		{
			name: "past_due subscription on non-exempt path",
			state: State{
				Authenticated:      true,
				HasAnyWorkspace:    true,
				SubscriptionActive: false,
			},
			want: RedirectPendingPayment,
		},
		{
			name: "past_due subscription on payment-exempt path",
			state: State{
				Authenticated:      true,
				HasAnyWorkspace:    true,
				SubscriptionActive: false,
				PaymentExempt:      true,
			},
			want: Allowed,
		},
		{
			name: "active subscription allowed",
			state: State{
				Authenticated:      true,
				HasAnyWorkspace:    true,
				SubscriptionActive: true,
			},
			want: Allowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.state))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allowed", Allowed.String())
	assert.Equal(t, "redirect_onboarding", RedirectOnboarding.String())
	assert.Equal(t, "unknown", Decision(99).String())
}
