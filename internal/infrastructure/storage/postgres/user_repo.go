package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/auth"
)

const userColumns = `
	id, email, password_hash, full_name, is_active, is_platform_admin,
	last_login_at, failed_login_attempts, locked_until,
	created_at, updated_at, version
`

// UserRepo implements auth.UserRepository on the shared users table.
type UserRepo struct {
	txm *TxManager
}

// NewUserRepo creates the user repository.
func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO users (
			id, email, password_hash, full_name, is_active, is_platform_admin,
			failed_login_attempts, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName,
		user.IsActive, user.IsPlatformAdmin, user.FailedLoginAttempts,
		user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user auth.User
	if err := pgxscan.Get(ctx, q, &user, query, userID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	var user auth.User
	if err := pgxscan.Get(ctx, q, &user, query, email); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", email)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE users SET
			email = $1, full_name = $2, is_active = $3, is_platform_admin = $4,
			last_login_at = $5, failed_login_attempts = $6, locked_until = $7,
			updated_at = now(), version = version + 1
		WHERE id = $8 AND version = $9
	`

	tag, err := q.Exec(ctx, query,
		user.Email, user.FullName, user.IsActive, user.IsPlatformAdmin,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
		user.ID, user.Version,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("user was modified concurrently or does not exist").
			WithDetail("id", user.ID)
	}
	user.Version++
	return nil
}

func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`

	var exists bool
	if err := q.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

var _ auth.UserRepository = (*UserRepo)(nil)

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct {
	txm *TxManager
}

// NewTokenRepo creates the refresh token repository.
func NewTokenRepo(txm *TxManager) *TokenRepo {
	return &TokenRepo{txm: txm}
}

func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.Exec(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, user_id, token_hash, expires_at, created_at,
		       revoked_at, revoked_reason
		FROM refresh_tokens WHERE token_hash = $1
	`

	var token auth.RefreshToken
	if err := pgxscan.Get(ctx, q, &token, query, tokenHash); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refresh_token", "hash")
		}
		return nil, fmt.Errorf("query refresh token: %w", err)
	}
	return &token, nil
}

func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE refresh_tokens SET revoked_at = now(), revoked_reason = $1
		WHERE id = $2 AND revoked_at IS NULL
	`

	if _, err := q.Exec(ctx, query, reason, tokenID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE refresh_tokens SET revoked_at = now(), revoked_reason = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`

	if _, err := q.Exec(ctx, query, reason, userID); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	q := r.txm.GetQuerier(ctx)

	query := `DELETE FROM refresh_tokens WHERE expires_at < now()`

	tag, err := q.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

var _ auth.TokenRepository = (*TokenRepo)(nil)
