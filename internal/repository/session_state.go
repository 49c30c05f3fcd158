package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/store"
)

// loadJSON 从会话存储读取 JSON，内容损坏时按不存在处理
func loadJSON(ctx context.Context, kv store.KV, key string, dest interface{}) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Warnw("session_state_corrupted",
			"key", key,
			"error", err,
		)
		return false, nil
	}
	return true, nil
}

// saveJSON 序列化后写入会话存储
func saveJSON(ctx context.Context, kv store.KV, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, string(payload), ttl)
}
