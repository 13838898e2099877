package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRegistry(rdb)
}

func TestRegistryMultiDeviceLogin(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddToken(ctx, "alice", "token-1"))
	require.NoError(t, reg.AddToken(ctx, "alice", "token-2"))

	has1, err := reg.HasToken(ctx, "alice", "token-1")
	require.NoError(t, err)
	has2, err := reg.HasToken(ctx, "alice", "token-2")
	require.NoError(t, err)
	assert.True(t, has1, "first login should remain valid")
	assert.True(t, has2, "second login should be valid")
}

func TestRegistryLogoutRemovesOnlyPresentedToken(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddToken(ctx, "alice", "token-1"))
	require.NoError(t, reg.AddToken(ctx, "alice", "token-2"))
	require.NoError(t, reg.RemoveToken(ctx, "alice", "token-1"))

	has1, err := reg.HasToken(ctx, "alice", "token-1")
	require.NoError(t, err)
	assert.False(t, has1, "a removed token must be rejected on replay")

	has2, err := reg.HasToken(ctx, "alice", "token-2")
	require.NoError(t, err)
	assert.True(t, has2, "the other device's token must survive logout")
}

func TestRegistryHasTokenUnknownUser(t *testing.T) {
	reg := setupRegistry(t)

	has, err := reg.HasToken(context.Background(), "nobody", "token")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRegistryDropAll(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddToken(ctx, "alice", "token-1"))
	require.NoError(t, reg.AddToken(ctx, "alice", "token-2"))
	require.NoError(t, reg.DropAll(ctx, "alice"))

	has, err := reg.HasToken(ctx, "alice", "token-2")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRegistryActiveUsernames(t *testing.T) {
	reg := setupRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddToken(ctx, "alice", "token-1"))
	require.NoError(t, reg.AddToken(ctx, "bob", "token-2"))

	usernames, err := reg.ActiveUsernames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, usernames)

	// Removing bob's only token drops the session row entirely.
	require.NoError(t, reg.RemoveToken(ctx, "bob", "token-2"))
	usernames, err = reg.ActiveUsernames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice"}, usernames)
}

func TestRegistryUnavailable(t *testing.T) {
	reg := NewRegistry(nil)
	ctx := context.Background()

	assert.ErrorIs(t, reg.AddToken(ctx, "alice", "t"), ErrUnavailable)
	_, err := reg.HasToken(ctx, "alice", "t")
	assert.ErrorIs(t, err, ErrUnavailable)
}
