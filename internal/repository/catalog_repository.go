package repository

import (
	"context"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/store"
)

// CatalogRepository 菜单快照数据访问接口
type CatalogRepository interface {
	Get(ctx context.Context, sessionID, restaurantID string) (*models.CatalogSnapshot, error)
	Save(ctx context.Context, sessionID string, snapshot *models.CatalogSnapshot, ttl time.Duration) error
}

// KVCatalogRepository 基于会话存储的实现，key 为 catalog-<restaurantID>
type KVCatalogRepository struct {
	kv store.KV
}

// NewCatalogRepository 创建菜单快照仓库
func NewCatalogRepository(kv store.KV) *KVCatalogRepository {
	return &KVCatalogRepository{kv: kv}
}

// Get 读取快照，不存在返回 nil
func (r *KVCatalogRepository) Get(ctx context.Context, sessionID, restaurantID string) (*models.CatalogSnapshot, error) {
	var snapshot models.CatalogSnapshot
	ok, err := loadJSON(ctx, store.Namespace(r.kv, sessionID), catalogKey(restaurantID), &snapshot)
	if err != nil || !ok {
		return nil, err
	}
	return &snapshot, nil
}

// Save 写入快照
func (r *KVCatalogRepository) Save(ctx context.Context, sessionID string, snapshot *models.CatalogSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	return saveJSON(ctx, store.Namespace(r.kv, sessionID), catalogKey(snapshot.RestaurantID), snapshot, ttl)
}

func catalogKey(restaurantID string) string {
	return store.ScopedKey(constants.StoreKeyCatalog, restaurantID)
}
