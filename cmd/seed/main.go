// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"atelier/internal/core/id"
	"atelier/internal/infrastructure/storage/postgres"
	"atelier/internal/plan"
	"atelier/internal/tenant"
	"atelier/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	adminUserID, err := seedPlatformAdmin(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed platform admin", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoStudio(ctx, pool, log, adminUserID); err != nil {
			log.Fatalw("failed to seed demo studio", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedPlatformAdmin(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@atelier.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = lower($1)`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("platform admin already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, full_name, is_active, is_platform_admin,
			failed_login_attempts, created_at, updated_at, version
		) VALUES ($1, lower($2), $3, 'Platform Admin', true, true, 0, $4, $4, 1)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert platform admin: %w", err)
	}

	log.Infow("platform admin created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

// seedDemoStudio creates a workspace on the studio plan with an active
// subscription, a demo owner, and a small book of work to browse.
func seedDemoStudio(ctx context.Context, pool *postgres.Pool, log *logger.Logger, adminUserID id.ID) error {
	log.Info("seeding demo studio...")

	ownerID, err := seedDemoOwner(ctx, pool, log)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	workspaceID := "ws-demo-studio"

	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO workspaces (id, name, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO NOTHING
	`, workspaceID, "Maison Demo", plan.TierStudio, now)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Infow("demo studio already exists", "workspace_id", workspaceID)
		return nil
	}

	members := []struct {
		userID id.ID
		role   tenant.Role
	}{
		{ownerID, tenant.RoleOwner},
		{adminUserID, tenant.RoleAdmin},
	}
	for _, m := range members {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (workspace_id, user_id) DO NOTHING
		`, workspaceID, m.userID, m.role, now)
		if err != nil {
			return fmt.Errorf("insert member: %w", err)
		}
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO subscriptions (
			workspace_id, status, cancel_at_period_end,
			external_customer_ref, external_subscription_ref, updated_at
		) VALUES ($1, $2, false, 'cus_demo', 'sub_demo', $3)
		ON CONFLICT (workspace_id) DO NOTHING
	`, workspaceID, tenant.SubscriptionActive, now)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}

	clientID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO clients (
			id, workspace_id, created_by, created_at, updated_at, version,
			name, email, phone, company, archived
		) VALUES ($1, $2, $3, $4, $4, 1, $5, $6, $7, $8, false)
	`, clientID, workspaceID, ownerID.String(), now,
		"Vera Lindqvist", "vera@lindqvist.example", "+46 70 000 00 00", "Lindqvist Interiors AB")
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	projectID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO projects (
			id, workspace_id, created_by, created_at, updated_at, version,
			name, client_id, status, budget, notes
		) VALUES ($1, $2, $3, $4, $4, 1, $5, $6, 'active', $7, $8)
	`, projectID, workspaceID, ownerID.String(), now,
		"Penthouse Redesign", clientID, decimal.NewFromInt(85000),
		"Full living area and kitchen, delivery before December.")
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	tasks := []string{
		"Initial site survey",
		"Mood board and material palette",
		"Furniture procurement list",
	}
	for _, title := range tasks {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO tasks (
				id, workspace_id, created_by, created_at, updated_at, version,
				project_id, title, status
			) VALUES ($1, $2, $3, $4, $4, 1, $5, $6, 'todo')
		`, id.New(), workspaceID, ownerID.String(), now, projectID, title)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
	}

	log.Infow("demo studio seeded",
		"workspace_id", workspaceID,
		"owner_id", ownerID,
		"project_id", projectID,
	)
	return nil
}

func seedDemoOwner(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	email := "owner@maisondemo.example"

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = lower($1)`, email,
	).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check demo owner exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Owner123!"), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, full_name, is_active, is_platform_admin,
			failed_login_attempts, created_at, updated_at, version
		) VALUES ($1, lower($2), $3, 'Demo Owner', true, false, 0, $4, $4, 1)
	`, userID, email, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert demo owner: %w", err)
	}

	log.Infow("demo owner created", "email", email, "user_id", userID)
	return userID, nil
}
