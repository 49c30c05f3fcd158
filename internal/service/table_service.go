package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
)

// TableService 桌号绑定服务
type TableService struct {
	tableRepo   repository.TableRepository
	queueClient *queue.Client
	bindingTTL  time.Duration
	now         func() time.Time
}

// NewTableService 创建桌号绑定服务，bindingTTL 为 0 表示不过期
func NewTableService(tableRepo repository.TableRepository, queueClient *queue.Client, bindingTTL time.Duration) *TableService {
	return &TableService{
		tableRepo:   tableRepo,
		queueClient: queueClient,
		bindingTTL:  bindingTTL,
		now:         time.Now,
	}
}

// NormalizeTableNumber 校验桌号（正整数）
func NormalizeTableNumber(raw string) (string, int, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return "", 0, ErrTableNumberInvalid
	}
	return strconv.Itoa(n), n, nil
}

// BindTable 绑定桌号，重复绑定直接覆盖
func (s *TableService) BindTable(ctx context.Context, sessionID, scope, tableNumber string) (*models.TableBinding, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	normalized, _, err := NormalizeTableNumber(tableNumber)
	if err != nil {
		return nil, err
	}
	now := s.now()
	binding := &models.TableBinding{
		RestaurantScope: scope,
		TableNumber:     normalized,
		BoundAt:         now,
	}
	if s.bindingTTL > 0 {
		expiresAt := now.Add(s.bindingTTL)
		binding.ExpiresAt = &expiresAt
	}
	if err := s.tableRepo.Save(ctx, sessionID, binding); err != nil {
		return nil, wrapStorageError(err)
	}
	if binding.ExpiresAt != nil {
		payload := queue.TableExpirePayload{
			SessionID:       sessionID,
			RestaurantScope: scope,
			BoundAt:         binding.BoundAt,
		}
		if err := s.queueClient.EnqueueTableExpire(payload, s.bindingTTL); err != nil {
			logger.Warnw("table_expire_enqueue_failed",
				"session_id", sessionID,
				"restaurant_scope", scope,
				"error", err,
			)
		}
	}
	return binding, nil
}

// GetBinding 获取桌号绑定，未绑定返回 nil
func (s *TableService) GetBinding(ctx context.Context, sessionID, scope string) (*models.TableBinding, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	binding, err := s.tableRepo.Get(ctx, sessionID, scope)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return binding, nil
}

// GetTableNumber 获取桌号
func (s *TableService) GetTableNumber(ctx context.Context, sessionID, scope string) (string, bool, error) {
	binding, err := s.GetBinding(ctx, sessionID, scope)
	if err != nil || binding == nil {
		return "", false, err
	}
	return binding.TableNumber, true, nil
}

// ClearTable 清除桌号绑定
func (s *TableService) ClearTable(ctx context.Context, sessionID, scope string) error {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return err
	}
	if err := s.tableRepo.Delete(ctx, sessionID, scope); err != nil {
		return wrapStorageError(err)
	}
	return nil
}

// ExpireTable 到期清理，仅当绑定未被重新绑定时删除
func (s *TableService) ExpireTable(ctx context.Context, sessionID, scope string, boundAt time.Time) (bool, error) {
	binding, err := s.GetBinding(ctx, sessionID, scope)
	if err != nil {
		return false, err
	}
	if binding == nil {
		return false, nil
	}
	if !binding.BoundAt.Equal(boundAt) {
		return false, nil
	}
	if err := s.ClearTable(ctx, sessionID, scope); err != nil {
		return false, err
	}
	return true, nil
}
