package store

import (
	"fmt"
	"strings"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/constants"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Open 按配置选择存储实现
func Open(cfg config.StoreConfig, db *gorm.DB, redisClient *redis.Client, redisPrefix string) (KV, error) {
	var primary KV
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case constants.StoreDriverMemory:
		return NewMemoryStore(), nil
	case "", constants.StoreDriverDatabase:
		if db == nil {
			return nil, fmt.Errorf("store driver %q requires database", constants.StoreDriverDatabase)
		}
		primary = NewGormStore(db)
	case constants.StoreDriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("store driver %q requires redis.enabled", constants.StoreDriverRedis)
		}
		primary = NewRedisStore(redisClient, redisPrefix)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
	if cfg.Fallback {
		return NewFallbackStore(primary), nil
	}
	return primary, nil
}
