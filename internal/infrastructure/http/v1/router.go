// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"atelier/internal/domain/auth"
	"atelier/internal/domain/client"
	"atelier/internal/domain/project"
	"atelier/internal/domain/task"
	"atelier/internal/domain/workspace"
	"atelier/internal/infrastructure/http/v1/handlers"
	"atelier/internal/infrastructure/http/v1/middleware"
	"atelier/internal/infrastructure/storage/postgres"
	"atelier/internal/plan"
	"atelier/internal/tenant"
	"atelier/pkg/logger"
)

// BillingPathPrefix is reachable with an inactive subscription so users can
// fix payment. Everything else behind the subscription gate returns 402.
const BillingPathPrefix = "/api/v1/billing"

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	// Pool is the shared database pool (health checks).
	Pool *postgres.Pool

	// Redis is the active-workspace store client; nil with the memory store.
	Redis *redis.Client

	// Sessions resolves memberships and the active workspace per principal.
	Sessions *tenant.Manager

	JWTValidator middleware.JWTValidator

	AuthService      *auth.Service
	WorkspaceService *workspace.Service
	ProjectService   *project.Service
	ClientService    *client.Service
	TaskService      *task.Service
	AuditService     *postgres.AuditService
}

// sessionAudit adapts AuditService to the session handler's recorder.
type sessionAudit struct {
	svc *postgres.AuditService
}

func (a sessionAudit) LogEvent(ctx context.Context, workspaceID, action string, details map[string]any) error {
	return a.svc.LogEvent(ctx, workspaceID, postgres.AuditAction(action), details)
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Redis)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	authHandler := handlers.NewAuthHandler(cfg.AuthService)

	var audit handlers.SessionAudit
	if cfg.AuditService != nil {
		audit = sessionAudit{svc: cfg.AuditService}
	}
	sessionHandler := handlers.NewSessionHandler(cfg.Sessions, audit)
	workspaceHandler := handlers.NewWorkspaceHandler(cfg.WorkspaceService)
	projectHandler := handlers.NewProjectHandler(cfg.ProjectService)
	clientHandler := handlers.NewClientHandler(cfg.ClientService)
	taskHandler := handlers.NewTaskHandler(cfg.TaskService)

	apiV1 := router.Group("/api/v1")
	{
		// Public auth endpoints
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// Everything below requires a valid token
		authed := apiV1.Group("")
		authed.Use(middleware.Auth(cfg.JWTValidator))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.GET("/auth/me", authHandler.Me)

			// The SPA bootstrap and workspace switching run before any
			// workspace is resolved into context.
			authed.GET("/session", sessionHandler.Get)
			authed.POST("/session/switch", sessionHandler.Switch)

			// Onboarding and invitation acceptance likewise precede scope.
			authed.POST("/workspaces", workspaceHandler.Create)
			authed.POST("/invitations/accept", workspaceHandler.AcceptInvite)

			// Workspace administration. Reachable with an inactive
			// subscription: this is where payment gets fixed.
			authed.PUT("/workspaces/:id/plan", workspaceHandler.ChangePlan)
			authed.GET("/workspaces/:id/members", workspaceHandler.Members)
			authed.DELETE("/workspaces/:id/members/:userId", workspaceHandler.RemoveMember)
			authed.POST("/workspaces/:id/invitations", workspaceHandler.Invite)
			authed.GET("/workspaces/:id/invitations", workspaceHandler.Invitations)

			// Platform admin surface
			admin := authed.Group("/admin")
			admin.Use(middleware.RequirePlatformAdmin())
			{
				admin.PUT("/subscriptions", workspaceHandler.UpdateSubscription)
			}

			// Workspace-scoped data: active workspace resolved into context,
			// subscription must be active or trialing.
			scoped := authed.Group("")
			scoped.Use(middleware.RequireWorkspace(cfg.Sessions))
			scoped.Use(middleware.RequireActiveSubscription(cfg.Sessions, BillingPathPrefix))
			{
				scoped.POST("/projects", projectHandler.Create)
				scoped.GET("/projects", projectHandler.List)
				scoped.GET("/projects/:id", projectHandler.Get)
				scoped.PUT("/projects/:id", projectHandler.Update)
				scoped.POST("/projects/:id/archive", projectHandler.Archive)

				scoped.POST("/projects/:id/tasks", taskHandler.Create)
				scoped.GET("/projects/:id/tasks", taskHandler.ListByProject)
				scoped.GET("/tasks/:taskId", taskHandler.Get)
				scoped.PUT("/tasks/:taskId", taskHandler.Update)
				scoped.DELETE("/tasks/:taskId", taskHandler.Delete)

				scoped.POST("/clients", clientHandler.Create)
				scoped.GET("/clients", clientHandler.List)
				scoped.GET("/clients/:id", clientHandler.Get)
				scoped.PUT("/clients/:id", clientHandler.Update)
				scoped.POST("/clients/:id/archive", clientHandler.Archive)

				if cfg.AuditService != nil {
					auditHandler := handlers.NewAuditHandler(cfg.AuditService)
					scoped.GET("/audit",
						middleware.RequireFeature(plan.FeatureReporting),
						auditHandler.History)
				}
			}
		}
	}

	return router
}
