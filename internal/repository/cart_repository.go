package repository

import (
	"context"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/store"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Load(ctx context.Context, sessionID, scope string) ([]models.CartItem, error)
	Save(ctx context.Context, sessionID, scope string, items []models.CartItem) error
	Clear(ctx context.Context, sessionID, scope string) error
}

// KVCartRepository 基于会话存储的实现，key 为 cart-<scope>
type KVCartRepository struct {
	kv store.KV
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(kv store.KV) *KVCartRepository {
	return &KVCartRepository{kv: kv}
}

// Load 读取购物车，过滤掉数量非法的条目
func (r *KVCartRepository) Load(ctx context.Context, sessionID, scope string) ([]models.CartItem, error) {
	var items []models.CartItem
	if _, err := loadJSON(ctx, store.Namespace(r.kv, sessionID), cartKey(scope), &items); err != nil {
		return nil, err
	}
	result := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// Save 覆盖写入购物车，空购物车直接删除 key
func (r *KVCartRepository) Save(ctx context.Context, sessionID, scope string, items []models.CartItem) error {
	if len(items) == 0 {
		return r.Clear(ctx, sessionID, scope)
	}
	return saveJSON(ctx, store.Namespace(r.kv, sessionID), cartKey(scope), items, 0)
}

// Clear 清空购物车
func (r *KVCartRepository) Clear(ctx context.Context, sessionID, scope string) error {
	return store.Namespace(r.kv, sessionID).Delete(ctx, cartKey(scope))
}

func cartKey(scope string) string {
	return store.ScopedKey(constants.StoreKeyCart, scope)
}
