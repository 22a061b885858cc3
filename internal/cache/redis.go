package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"book-recs/internal/recommend"
)

const (
	// Key prefix for last-served lists
	servedKeyPrefix = "served:"

	// Served lists only matter for short-lived refresh loops
	servedTTL = 24 * time.Hour
)

// Redis is a shared history store for multi-instance deployments. Lists are
// stored as JSON under a per-target key with a TTL.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a new Redis history client
func NewRedis(addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Redis{client: client}, nil
}

func (r *Redis) LastServed(ctx context.Context, targetID string) ([]recommend.Candidate, error) {
	data, err := r.client.Get(ctx, servedKeyPrefix+targetID).Bytes()
	if err == redis.Nil {
		return nil, nil // no history yet
	}
	if err != nil {
		return nil, err
	}

	var list []recommend.Candidate
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Redis) SetLastServed(ctx context.Context, targetID string, list []recommend.Candidate) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, servedKeyPrefix+targetID, data, servedTTL).Err()
}

// Close closes the underlying client connection
func (r *Redis) Close() error {
	return r.client.Close()
}
