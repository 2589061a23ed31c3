package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlotStore stores slots as plain Redis strings.
// Keys are namespaced: {namespace}:slot:{key}
type RedisSlotStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisClient parses url and returns a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisSlotStore creates a Redis-backed slot store.
func NewRedisSlotStore(client *redis.Client, namespace string) *RedisSlotStore {
	return &RedisSlotStore{client: client, namespace: namespace}
}

func (s *RedisSlotStore) namespaceKey(key string) string {
	return fmt.Sprintf("%s:slot:%s", s.namespace, key)
}

// Get returns the value stored under key.
func (s *RedisSlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.namespaceKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value without expiration.
func (s *RedisSlotStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.namespaceKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete clears key.
func (s *RedisSlotStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.namespaceKey(key)).Err()
}

// Ping checks the connection.
func (s *RedisSlotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisSlotStore) Close() error {
	return s.client.Close()
}
