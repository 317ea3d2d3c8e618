package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis dials addr and verifies it answers. Callers treat the cache
// as optional; a connection failure here is theirs to decide on.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return client, nil
}
