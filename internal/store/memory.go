package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore 进程内存储
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get 读取值，过期条目按不存在处理
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		if current, exists := m.entries[key]; exists && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

// getWithTTL 读取值与剩余有效期，剩余有效期为 0 表示不过期
func (m *MemoryStore) getWithTTL(ctx context.Context, key string) (string, time.Duration, bool) {
	value, ok, _ := m.Get(ctx, key)
	if !ok {
		return "", 0, false
	}
	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()
	if !exists {
		return "", 0, false
	}
	if entry.expiresAt.IsZero() {
		return value, 0, true
	}
	remaining := entry.expiresAt.Sub(m.now())
	if remaining <= 0 {
		return "", 0, false
	}
	return value, remaining, true
}

// Set 写入值
func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete 删除值
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len 当前条目数（含未清理的过期条目）
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// PurgeExpired 清理已过期条目
func (m *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	now := m.now()
	var purged int64
	m.mu.Lock()
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			purged++
		}
	}
	m.mu.Unlock()
	return purged, nil
}
