package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/comanda-next/internal/logger"
)

// fallbackTombstone 降级期间的删除标记，存储值均为 JSON 文本，不会与之冲突
const fallbackTombstone = "\x00deleted"

// FallbackStore 主存储失败时降级到内存存储
//
// 内存中只保留降级期间的写入与删除，它们比主存储中的值更新，读取时优先返回，
// 并在主存储恢复后回写。主存储写入成功时移除对应的内存副本。
type FallbackStore struct {
	primary  KV
	memory   *MemoryStore
	degraded atomic.Bool
}

// NewFallbackStore 创建带内存降级的存储
func NewFallbackStore(primary KV) *FallbackStore {
	return &FallbackStore{
		primary: primary,
		memory:  NewMemoryStore(),
	}
}

// Degraded 最近一次操作是否走了内存降级
func (s *FallbackStore) Degraded() bool {
	return s.degraded.Load()
}

func (s *FallbackStore) markDegraded(op, key string, err error) {
	if !s.degraded.Swap(true) {
		logger.Warnw("store_fallback_to_memory",
			"op", op,
			"key", key,
			"error", err,
		)
	}
}

func (s *FallbackStore) markRecovered() {
	if s.degraded.Swap(false) {
		logger.Infow("store_primary_recovered")
	}
}

// Get 读取值，降级期间的内存副本优先
func (s *FallbackStore) Get(ctx context.Context, key string) (string, bool, error) {
	if value, ttl, ok := s.memory.getWithTTL(ctx, key); ok {
		s.flush(ctx, key, value, ttl)
		if value == fallbackTombstone {
			return "", false, nil
		}
		return value, true, nil
	}
	value, ok, err := s.primary.Get(ctx, key)
	if err != nil {
		s.markDegraded("get", key, err)
		return "", false, nil
	}
	s.markRecovered()
	return value, ok, nil
}

// flush 尝试把降级期间的写入或删除回写到主存储，成功后移除内存副本
func (s *FallbackStore) flush(ctx context.Context, key, value string, ttl time.Duration) {
	var err error
	if value == fallbackTombstone {
		err = s.primary.Delete(ctx, key)
	} else {
		err = s.primary.Set(ctx, key, value, ttl)
	}
	if err != nil {
		s.markDegraded("flush", key, err)
		return
	}
	s.markRecovered()
	_ = s.memory.Delete(ctx, key)
	logger.Debugw("store_fallback_flushed", "key", key)
}

// Set 写入值
func (s *FallbackStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.primary.Set(ctx, key, value, ttl); err != nil {
		s.markDegraded("set", key, err)
		return s.memory.Set(ctx, key, value, ttl)
	}
	s.markRecovered()
	return s.memory.Delete(ctx, key)
}

// Delete 删除值，主存储失败时在内存中记录删除标记
func (s *FallbackStore) Delete(ctx context.Context, key string) error {
	if err := s.primary.Delete(ctx, key); err != nil {
		s.markDegraded("delete", key, err)
		return s.memory.Set(ctx, key, fallbackTombstone, 0)
	}
	s.markRecovered()
	return s.memory.Delete(ctx, key)
}

// PurgeExpired 清理内存副本与主存储中已过期的条目
func (s *FallbackStore) PurgeExpired(ctx context.Context) (int64, error) {
	purged, _ := s.memory.PurgeExpired(ctx)
	if p, ok := s.primary.(Purger); ok {
		n, err := p.PurgeExpired(ctx)
		return purged + n, err
	}
	return purged, nil
}
