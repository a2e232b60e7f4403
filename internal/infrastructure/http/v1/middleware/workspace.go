package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
	"atelier/internal/tenant"
)

// RequireWorkspace resolves the principal's active workspace into the request
// context. A principal with no memberships gets 409 onboarding-required; the
// workspace itself comes from the cached tenant session, loaded on first use.
func RequireWorkspace(sessions *tenant.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := appctx.GetPrincipal(c.Request.Context())
		if principal == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		sess := sessions.Session(principal.UserID)
		if sess == nil || !sess.Loaded() {
			loaded, err := sessions.Load(c.Request.Context(), principal.UserID)
			if err != nil {
				_ = c.Error(apperror.NewInternal(err).WithDetail("stage", "tenant_load"))
				c.Abort()
				return
			}
			sess = loaded
		}

		active := sess.ActiveWorkspace()
		if active == nil {
			_ = c.Error(apperror.NewOnboardingRequired())
			c.Abort()
			return
		}

		ctx := tenant.WithWorkspace(c.Request.Context(), active)
		if m := sess.ActiveMembership(); m != nil {
			ctx = tenant.WithMembership(ctx, m)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set("workspace_id", active.ID)

		c.Next()
	}
}

// RequireActiveSubscription gates feature routes behind an active or trialing
// subscription. Exempt path prefixes pass so the client can always reach the
// billing surface to fix payment. Platform admins pass.
func RequireActiveSubscription(sessions *tenant.Manager, exemptPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range exemptPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		if appctx.IsPlatformAdmin(c.Request.Context()) {
			c.Next()
			return
		}

		principal := appctx.GetPrincipal(c.Request.Context())
		if principal == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		sess := sessions.Session(principal.UserID)
		if sess == nil || !sess.Loaded() {
			loaded, err := sessions.Load(c.Request.Context(), principal.UserID)
			if err != nil {
				_ = c.Error(apperror.NewInternal(err).WithDetail("stage", "subscription_load"))
				c.Abort()
				return
			}
			sess = loaded
		}

		status := sess.ActiveSubscription()
		if !status.IsActive() {
			_ = c.Error(apperror.NewSubscriptionInactive(string(status)))
			c.Abort()
			return
		}

		c.Next()
	}
}
