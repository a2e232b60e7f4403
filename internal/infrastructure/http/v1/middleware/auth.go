package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"atelier/internal/core/apperror"
	appctx "atelier/internal/core/context"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.Principal, error)
}

// Auth middleware validates JWT tokens and populates the principal. The token
// names the user only; workspace access is resolved per request downstream.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		principal, err := validator.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token"))
			c.Abort()
			return
		}

		ctx := appctx.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", principal.UserID)

		c.Next()
	}
}

// RequirePlatformAdmin rejects principals without the platform admin flag.
func RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := appctx.GetPrincipal(c.Request.Context())
		if principal == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}
		if !principal.IsPlatformAdmin {
			_ = c.Error(apperror.NewForbidden("platform admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
