// Package main is the entry point for the Atelier API server.
// Multi-tenant architecture: shared database, row-level workspace isolation.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"atelier/internal/domain/auth"
	"atelier/internal/domain/client"
	"atelier/internal/domain/project"
	"atelier/internal/domain/task"
	"atelier/internal/domain/workspace"
	v1 "atelier/internal/infrastructure/http/v1"
	"atelier/internal/infrastructure/storage/postgres"
	"atelier/internal/tenant"
	"atelier/pkg/logger"
)

func main() {
	// Local development convenience; missing file is not an error.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting atelier server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Active-workspace store ---
	// Redis keeps the pointer across instances; the memory store is for
	// single-node and development setups.
	var (
		redisClient *redis.Client
		activeStore tenant.ActiveStore
	)
	if redisURL := getEnv("REDIS_URL", ""); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalw("invalid REDIS_URL", "error", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalw("failed to ping redis", "error", err)
		}
		defer redisClient.Close()

		ttl := getEnvDuration("ACTIVE_WORKSPACE_TTL", 30*24*time.Hour)
		activeStore = tenant.NewRedisStore(redisClient, ttl)
		log.Info("redis active-workspace store initialized")
	} else {
		activeStore = tenant.NewMemoryStore()
		log.Info("in-memory active-workspace store initialized")
	}

	// --- Tenant session manager ---
	managerCfg := tenant.DefaultManagerConfig()
	if idleTimeout := getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute); idleTimeout > 0 {
		managerCfg.SessionIdleTimeout = idleTimeout
	}

	directory := postgres.NewDirectoryRepo(txManager)
	sessions := tenant.NewManager(managerCfg, directory, activeStore, log)
	defer sessions.Close()

	log.Infow("tenant session manager initialized",
		"idle_timeout", managerCfg.SessionIdleTimeout,
	)

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtConfig := auth.DefaultJWTConfig(jwtSecret)
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Auth Service ---
	userRepo := postgres.NewUserRepo(txManager)
	tokenRepo := postgres.NewTokenRepo(txManager)
	authService := auth.NewService(
		userRepo,
		tokenRepo,
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Workspace Service ---
	workspaceRepo := postgres.NewWorkspaceRepo(txManager)
	workspaceService := workspace.NewService(
		workspaceRepo,
		txManager,
		sessions,
		workspaceAudit{auditService},
	)

	// --- Studio Services ---
	projectService := project.NewService(postgres.NewProjectRepo(txManager))
	clientService := client.NewService(postgres.NewClientRepo(txManager))
	taskService := task.NewService(postgres.NewTaskRepo(txManager), projectService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		Pool:             pool,
		Redis:            redisClient,
		Sessions:         sessions,
		JWTValidator:     jwtService,
		AuthService:      authService,
		WorkspaceService: workspaceService,
		ProjectService:   projectService,
		ClientService:    clientService,
		TaskService:      taskService,
		AuditService:     auditService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// workspaceAudit adapts the audit service to the workspace recorder.
type workspaceAudit struct {
	svc *postgres.AuditService
}

func (a workspaceAudit) LogEvent(ctx context.Context, workspaceID, action string, details map[string]any) error {
	return a.svc.LogEvent(ctx, workspaceID, postgres.AuditAction(action), details)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
