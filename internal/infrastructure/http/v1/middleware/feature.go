package middleware

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/entitlement"
	"atelier/internal/plan"
)

// RequireFeature gates a route behind a plan feature. Runs after
// RequireWorkspace, which puts the workspace (and thus the tier) in context.
// The 403 carries the lowest tier unlocking the feature so the client can
// render the upgrade prompt.
func RequireFeature(f plan.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		ent := entitlement.FromContext(c.Request.Context())
		if err := ent.Require(f); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
