package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"
)

// CartService 购物车服务
type CartService struct {
	cartRepo repository.CartRepository
	locks    *keyedMutex
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		locks:    newKeyedMutex(),
	}
}

// Get 获取门店范围内的购物车
func (s *CartService) Get(ctx context.Context, sessionID, scope string) ([]models.CartItem, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.Load(ctx, sessionID, scope)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return items, nil
}

// SetQuantity 设置商品数量，0 表示移除
func (s *CartService) SetQuantity(ctx context.Context, sessionID, scope, productID string, quantity int) ([]models.CartItem, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrCartItemInvalid
	}
	if quantity < 0 {
		return nil, ErrCartQuantityInvalid
	}

	unlock := s.locks.Lock(sessionScopeKey(sessionID, scope))
	defer unlock()

	items, err := s.cartRepo.Load(ctx, sessionID, scope)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	items = applyQuantity(items, productID, quantity)
	if err := s.cartRepo.Save(ctx, sessionID, scope, items); err != nil {
		return nil, wrapStorageError(err)
	}
	return items, nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sessionID, scope string) error {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(sessionScopeKey(sessionID, scope))
	defer unlock()
	if err := s.cartRepo.Clear(ctx, sessionID, scope); err != nil {
		return wrapStorageError(err)
	}
	return nil
}

// RemoveSubmitted 从购物车扣除已提交的数量，并移除计价时被剔除的商品
//
// 提交期间新加入或加量的商品保留在购物车中。
func (s *CartService) RemoveSubmitted(ctx context.Context, sessionID, scope string, lines []PriceLine, dropped []string) ([]models.CartItem, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(sessionScopeKey(sessionID, scope))
	defer unlock()

	items, err := s.cartRepo.Load(ctx, sessionID, scope)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	submitted := make(map[string]int, len(lines))
	for _, line := range lines {
		submitted[line.ProductID] += line.Quantity
	}
	for _, productID := range dropped {
		submitted[productID] = -1
	}
	remaining := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		quantity, ok := submitted[item.ProductID]
		if !ok {
			remaining = append(remaining, item)
			continue
		}
		if quantity < 0 || item.Quantity <= quantity {
			continue
		}
		remaining = append(remaining, models.CartItem{ProductID: item.ProductID, Quantity: item.Quantity - quantity})
	}
	if len(remaining) == 0 {
		if err := s.cartRepo.Clear(ctx, sessionID, scope); err != nil {
			return nil, wrapStorageError(err)
		}
		return remaining, nil
	}
	if err := s.cartRepo.Save(ctx, sessionID, scope, remaining); err != nil {
		return nil, wrapStorageError(err)
	}
	return remaining, nil
}

// applyQuantity 返回新的购物车列表：已存在则原位更新，不存在则追加，0 则移除
func applyQuantity(items []models.CartItem, productID string, quantity int) []models.CartItem {
	result := make([]models.CartItem, 0, len(items)+1)
	found := false
	for _, item := range items {
		if item.ProductID != productID {
			result = append(result, item)
			continue
		}
		if found {
			continue
		}
		found = true
		if quantity > 0 {
			result = append(result, models.CartItem{ProductID: productID, Quantity: quantity})
		}
	}
	if !found && quantity > 0 {
		result = append(result, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	return result
}

func wrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
