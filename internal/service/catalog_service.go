package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comanda-next/internal/cache"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"
)

// CatalogLoader 上游菜单加载
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, restaurantID string) ([]models.Product, error)
}

// ProductFilter 菜单过滤条件
type ProductFilter struct {
	Category      string
	Search        string
	OnlyAvailable bool
}

// CatalogService 菜单服务
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	loader      CatalogLoader
	snapshotTTL time.Duration
	sharedTTL   time.Duration
	now         func() time.Time
}

// NewCatalogService 创建菜单服务
func NewCatalogService(catalogRepo repository.CatalogRepository, loader CatalogLoader, snapshotTTL, sharedTTL time.Duration) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		loader:      loader,
		snapshotTTL: snapshotTTL,
		sharedTTL:   sharedTTL,
		now:         time.Now,
	}
}

// Load 获取会话内的菜单快照，首次访问或 refresh 时请求上游
func (s *CatalogService) Load(ctx context.Context, sessionID, restaurantID string, refresh bool) (*models.CatalogSnapshot, error) {
	restaurantID, err := NormalizeScope(restaurantID)
	if err != nil {
		return nil, err
	}
	if !refresh {
		snapshot, err := s.catalogRepo.Get(ctx, sessionID, restaurantID)
		if err != nil {
			return nil, wrapStorageError(err)
		}
		if snapshot != nil {
			return snapshot, nil
		}
	}

	products, err := s.fetch(ctx, restaurantID, refresh)
	if err != nil {
		return nil, err
	}
	snapshot := &models.CatalogSnapshot{
		RestaurantID: restaurantID,
		Products:     products,
		LoadedAt:     s.now(),
	}
	if err := s.catalogRepo.Save(ctx, sessionID, snapshot, s.snapshotTTL); err != nil {
		return nil, wrapStorageError(err)
	}
	return snapshot, nil
}

// Products 获取菜单商品并按条件过滤
func (s *CatalogService) Products(ctx context.Context, sessionID, restaurantID string, filter ProductFilter, refresh bool) ([]models.Product, error) {
	snapshot, err := s.Load(ctx, sessionID, restaurantID, refresh)
	if err != nil {
		return nil, err
	}
	return FilterProducts(snapshot.Products, filter), nil
}

// Categories 获取菜单分类
func (s *CatalogService) Categories(ctx context.Context, sessionID, restaurantID string) ([]string, error) {
	snapshot, err := s.Load(ctx, sessionID, restaurantID, false)
	if err != nil {
		return nil, err
	}
	return Categories(snapshot.Products), nil
}

// Totals 基于会话菜单快照计算购物车合计
func (s *CatalogService) Totals(ctx context.Context, sessionID, restaurantID string, items []models.CartItem, orderType string, splitCount int) (*Totals, error) {
	snapshot, err := s.Load(ctx, sessionID, restaurantID, false)
	if err != nil {
		return nil, err
	}
	return ComputeTotals(items, snapshot.Products, orderType, splitCount)
}

func (s *CatalogService) fetch(ctx context.Context, restaurantID string, bypassShared bool) ([]models.Product, error) {
	useShared := s.sharedTTL > 0 && cache.Enabled()
	if useShared && !bypassShared {
		var cached []models.Product
		hit, err := cache.GetJSON(ctx, cache.CatalogKey(restaurantID), &cached)
		if err != nil {
			logger.Warnw("catalog_shared_cache_get_failed", "restaurant_id", restaurantID, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	products, err := s.loader.LoadCatalog(ctx, restaurantID)
	if err != nil {
		logger.Warnw("catalog_load_failed", "restaurant_id", restaurantID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if useShared {
		if err := cache.SetJSON(ctx, cache.CatalogKey(restaurantID), products, s.sharedTTL); err != nil {
			logger.Warnw("catalog_shared_cache_set_failed", "restaurant_id", restaurantID, "error", err)
		}
	}
	return products, nil
}

// FilterProducts 按可售、分类、关键词过滤，关键词匹配名称与描述（忽略大小写）
func FilterProducts(products []models.Product, filter ProductFilter) []models.Product {
	category := strings.TrimSpace(filter.Category)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]models.Product, 0, len(products))
	for _, product := range products {
		if filter.OnlyAvailable && !product.IsAvailable {
			continue
		}
		if category != "" && !strings.EqualFold(strings.TrimSpace(product.Category), category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(product.Name), search) &&
			!strings.Contains(strings.ToLower(product.Description), search) {
			continue
		}
		result = append(result, product)
	}
	return result
}

// Categories 按首次出现顺序返回去重后的分类
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	result := make([]string, 0)
	for _, product := range products {
		name := strings.TrimSpace(product.Category)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, name)
	}
	return result
}
