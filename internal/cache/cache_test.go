package cache

import (
	"context"
	"testing"
	"time"

	"taskhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute), mr
}

func TestDisabledCacheIsSafe(t *testing.T) {
	c := New(nil, 0)
	ctx := context.Background()

	assert.False(t, c.Enabled())

	_, ok := c.GetUser(ctx, 1)
	assert.False(t, ok)
	_, ok = c.GetTask(ctx, 1)
	assert.False(t, ok)

	c.SetUser(ctx, &models.User{ID: 1, Username: "alice"})
	c.SetTask(ctx, &models.Task{ID: 1, OwnerID: 1, Title: "x"})
	c.DelUser(ctx, 1)
	c.DelTask(ctx, 1)
}

func TestUserRoundTripDropsPasswordHash(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetUser(ctx, &models.User{
		ID:             1,
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "super-secret-hash",
		IsAdmin:        true,
	})
	assert.True(t, mr.Exists("user:1"))

	got, ok := c.GetUser(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, got.IsAdmin)
	// The hash never survives serialization into the cache.
	assert.Empty(t, got.HashedPassword)

	_, ok = c.GetUser(ctx, 2)
	assert.False(t, ok)

	c.DelUser(ctx, 1)
	_, ok = c.GetUser(ctx, 1)
	assert.False(t, ok)
}

func TestTaskRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	desc := "quarterly numbers"
	c.SetTask(ctx, &models.Task{
		ID:          9,
		OwnerID:     3,
		Title:       "write report",
		Description: &desc,
		Completed:   true,
	})
	assert.True(t, mr.Exists("task:9"))

	got, ok := c.GetTask(ctx, 9)
	require.True(t, ok)
	assert.Equal(t, 9, got.ID)
	assert.Equal(t, 3, got.OwnerID)
	assert.Equal(t, "write report", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "quarterly numbers", *got.Description)
	assert.True(t, got.Completed)

	ttl := mr.TTL("task:9")
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCacheDegradesWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetUser(ctx, &models.User{ID: 1, Username: "alice"})
	mr.Close()

	_, ok := c.GetUser(ctx, 1)
	assert.False(t, ok, "a dead Redis reads as a miss")

	c.SetUser(ctx, &models.User{ID: 2, Username: "bob"})
	c.DelUser(ctx, 1)
}
