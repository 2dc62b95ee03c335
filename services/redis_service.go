package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rkive-api/config"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by RedisService.Get for absent keys and when no
// client is configured.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the subset of RedisService the read-through caches use.
type Cache interface {
	Get(key string, dest interface{}) error
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(keys ...string) error
}

// RedisService wraps an optional Redis client. Every method is a no-op (or a
// miss) when Client is nil.
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService uses client, or config.Redis when client is nil.
func NewRedisService(client *redis.Client) *RedisService {
	if client == nil {
		client = config.Redis
	}
	return &RedisService{Client: client, Ctx: context.Background()}
}

// Enabled reports whether a client is configured.
func (s *RedisService) Enabled() bool {
	return s != nil && s.Client != nil
}

// Set stores value as JSON with expiration.
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get decodes the JSON stored at key into dest.
func (s *RedisService) Get(key string, dest interface{}) error {
	if !s.Enabled() {
		return ErrCacheMiss
	}
	val, err := s.Client.Get(s.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Exists reports whether key is present.
func (s *RedisService) Exists(key string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	n, err := s.Client.Exists(s.Ctx, key).Result()
	return n > 0, err
}

// Delete removes keys.
func (s *RedisService) Delete(keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	return s.Client.Del(s.Ctx, keys...).Err()
}
