package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.Recall(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got, "unknown principal recalls empty")

	require.NoError(t, store.Remember(ctx, "u1", "ws-a"))
	got, err = store.Recall(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ws-a", got)

	// Remember overwrites.
	require.NoError(t, store.Remember(ctx, "u1", "ws-b"))
	got, err = store.Recall(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ws-b", got)

	require.NoError(t, store.Forget(ctx, "u1"))
	got, err = store.Recall(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreIsolatesPrincipals(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, "u1", "ws-a"))
	require.NoError(t, store.Remember(ctx, "u2", "ws-b"))
	require.NoError(t, store.Forget(ctx, "u1"))

	got, err := store.Recall(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "ws-b", got)
}
