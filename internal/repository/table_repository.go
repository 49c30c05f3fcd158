package repository

import (
	"context"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/store"
)

// TableRepository 桌号绑定数据访问接口
type TableRepository interface {
	Get(ctx context.Context, sessionID, scope string) (*models.TableBinding, error)
	Save(ctx context.Context, sessionID string, binding *models.TableBinding) error
	Delete(ctx context.Context, sessionID, scope string) error
}

// KVTableRepository 基于会话存储的实现，key 为 table-<scope>
type KVTableRepository struct {
	kv  store.KV
	now func() time.Time
}

// NewTableRepository 创建桌号仓库
func NewTableRepository(kv store.KV) *KVTableRepository {
	return &KVTableRepository{kv: kv, now: time.Now}
}

// Get 读取绑定，不存在或已过期返回 nil
func (r *KVTableRepository) Get(ctx context.Context, sessionID, scope string) (*models.TableBinding, error) {
	var binding models.TableBinding
	ok, err := loadJSON(ctx, store.Namespace(r.kv, sessionID), tableKey(scope), &binding)
	if err != nil || !ok {
		return nil, err
	}
	if binding.ExpiresAt != nil && !r.now().Before(*binding.ExpiresAt) {
		return nil, nil
	}
	if binding.TableNumber == "" {
		return nil, nil
	}
	return &binding, nil
}

// Save 写入绑定，存储 TTL 与 ExpiresAt 保持一致
func (r *KVTableRepository) Save(ctx context.Context, sessionID string, binding *models.TableBinding) error {
	if binding == nil {
		return nil
	}
	var ttl time.Duration
	if binding.ExpiresAt != nil {
		ttl = binding.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Delete(ctx, sessionID, binding.RestaurantScope)
		}
	}
	return saveJSON(ctx, store.Namespace(r.kv, sessionID), tableKey(binding.RestaurantScope), binding, ttl)
}

// Delete 删除绑定
func (r *KVTableRepository) Delete(ctx context.Context, sessionID, scope string) error {
	return store.Namespace(r.kv, sessionID).Delete(ctx, tableKey(scope))
}

func tableKey(scope string) string {
	return store.ScopedKey(constants.StoreKeyTable, scope)
}
