package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 Redis 的存储
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 存储，key 形如 <prefix>:kv:<key>
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "cmd"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) buildKey(key string) string {
	return fmt.Sprintf("%s:kv:%s", s.prefix, key)
}

// Get 读取值
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.client == nil {
		return "", false, ErrUnavailable
	}
	val, err := s.client.Get(ctx, s.buildKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set 写入值
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.buildKey(key), value, ttl).Err()
}

// Delete 删除值
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}
	return s.client.Del(ctx, s.buildKey(key)).Err()
}
