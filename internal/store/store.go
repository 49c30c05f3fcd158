// Package store 提供会话状态使用的键值存储抽象。
//
// 购物车、桌号绑定、结账状态等会话数据统一通过 KV 接口读写，
// 后端可在内存、数据库、Redis 之间切换。
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable 存储不可用
var ErrUnavailable = errors.New("store unavailable")

// KV 键值存储接口
type KV interface {
	// Get 读取值，不存在时 ok 为 false
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set 写入值，ttl<=0 表示不过期
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete 删除值，key 不存在不报错
	Delete(ctx context.Context, key string) error
}

// Purger 支持批量清理过期条目的存储
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// NamespacedKV 为所有 key 增加固定前缀
type NamespacedKV struct {
	inner  KV
	prefix string
}

// Namespace 返回以会话 ID 隔离的存储视图
func Namespace(inner KV, sessionID string) *NamespacedKV {
	return &NamespacedKV{
		inner:  inner,
		prefix: fmt.Sprintf("s:%s:", strings.TrimSpace(sessionID)),
	}
}

// Get 读取值
func (n *NamespacedKV) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

// Set 写入值
func (n *NamespacedKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, value, ttl)
}

// Delete 删除值
func (n *NamespacedKV) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

// ScopedKey 拼接门店范围 key，如 cart-<unitID>
func ScopedKey(prefix, scope string) string {
	return prefix + "-" + scope
}
