// Package cache is a read-through Redis cache for user and task point
// lookups. It is strictly an accelerator: every method is safe on a nil
// client, and any Redis failure degrades to a miss so the database stays
// authoritative.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"taskhub/internal/models"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps client; a nil client disables caching entirely.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func userKey(id int) string { return fmt.Sprintf("user:%d", id) }
func taskKey(id int) string { return fmt.Sprintf("task:%d", id) }

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dest) == nil
}

func (c *Cache) set(ctx context.Context, key string, v interface{}) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.client.SetEX(ctx, key, data, c.ttl)
}

func (c *Cache) del(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	c.client.Del(ctx, key)
}

func (c *Cache) GetUser(ctx context.Context, id int) (*models.User, bool) {
	var u models.User
	if !c.get(ctx, userKey(id), &u) {
		return nil, false
	}
	return &u, true
}

func (c *Cache) SetUser(ctx context.Context, u *models.User) {
	c.set(ctx, userKey(u.ID), u)
}

func (c *Cache) DelUser(ctx context.Context, id int) {
	c.del(ctx, userKey(id))
}

func (c *Cache) GetTask(ctx context.Context, id int) (*models.Task, bool) {
	var t models.Task
	if !c.get(ctx, taskKey(id), &t) {
		return nil, false
	}
	return &t, true
}

func (c *Cache) SetTask(ctx context.Context, t *models.Task) {
	c.set(ctx, taskKey(t.ID), t)
}

func (c *Cache) DelTask(ctx context.Context, id int) {
	c.del(ctx, taskKey(id))
}
