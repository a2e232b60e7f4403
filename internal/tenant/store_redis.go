package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists active workspace pointers in Redis so the selection
// survives reloads and is shared across API instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a Redis-backed ActiveStore.
// A zero ttl keeps pointers until explicitly forgotten.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "atelier:active-workspace:",
	}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStore) Remember(ctx context.Context, userID, workspaceID string) error {
	if err := s.client.Set(ctx, s.key(userID), workspaceID, s.ttl).Err(); err != nil {
		return fmt.Errorf("remember active workspace: %w", err)
	}
	return nil
}

func (s *RedisStore) Recall(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("recall active workspace: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Forget(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("forget active workspace: %w", err)
	}
	return nil
}

var _ ActiveStore = (*RedisStore)(nil)
