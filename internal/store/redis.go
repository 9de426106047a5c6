package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisKeyPrefix namespaces server documents in the keyspace.
const redisKeyPrefix = "routeward:server:"

// RedisStore is a Store keeping each server document as a JSON value, for
// deployments where the proxy tails its configuration from Redis instead of
// exposing an admin endpoint.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

// GetServer returns the named server document.
func (s *RedisStore) GetServer(ctx context.Context, name string) (*ServerConfig, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &NotFoundError{Server: name}
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	var cfg ServerConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal server config: %w", err)
	}

	s.logger.Debug("read server config",
		zap.String("server", name),
		zap.Int("routes", len(cfg.Routes)),
	)
	return &cfg, nil
}

// PutServer replaces the named server document.
func (s *RedisStore) PutServer(ctx context.Context, name string, cfg *ServerConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal server config: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+name, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write server config: %w", err)
	}

	s.logger.Debug("wrote server config",
		zap.String("server", name),
		zap.Int("routes", len(cfg.Routes)),
	)
	return nil
}

// DeleteServer removes the named server document.
func (s *RedisStore) DeleteServer(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+name).Err(); err != nil {
		return fmt.Errorf("failed to delete server config: %w", err)
	}
	return nil
}

// ServerExists checks whether a document exists for the server.
func (s *RedisStore) ServerExists(ctx context.Context, name string) (bool, error) {
	result, err := s.client.Exists(ctx, redisKeyPrefix+name).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return result > 0, nil
}

// ListServers returns the names of all servers with a stored document.
func (s *RedisStore) ListServers(ctx context.Context) ([]string, error) {
	keys, err := s.client.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if len(key) > len(redisKeyPrefix) {
			names = append(names, key[len(redisKeyPrefix):])
		}
	}
	return names, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
