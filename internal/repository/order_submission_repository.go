package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// OrderSubmissionRepository 下单流水数据访问接口
type OrderSubmissionRepository interface {
	Create(submission *models.OrderSubmission) error
	GetByKey(key string) (*models.OrderSubmission, error)
	MarkAttempt(key string) error
	MarkSucceeded(key, upstreamOrderID, upstreamStatus string) error
	MarkFailed(key, message string) error
	ListBySession(filter SubmissionListFilter) ([]models.OrderSubmission, int64, error)
	WithTx(tx *gorm.DB) *GormOrderSubmissionRepository
}

// GormOrderSubmissionRepository GORM 实现
type GormOrderSubmissionRepository struct {
	db *gorm.DB
}

// NewOrderSubmissionRepository 创建下单流水仓库
func NewOrderSubmissionRepository(db *gorm.DB) *GormOrderSubmissionRepository {
	return &GormOrderSubmissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderSubmissionRepository) WithTx(tx *gorm.DB) *GormOrderSubmissionRepository {
	if tx == nil {
		return r
	}
	return &GormOrderSubmissionRepository{db: tx}
}

// Create 创建流水
func (r *GormOrderSubmissionRepository) Create(submission *models.OrderSubmission) error {
	if submission == nil {
		return nil
	}
	return r.db.Create(submission).Error
}

// GetByKey 按幂等键查询
func (r *GormOrderSubmissionRepository) GetByKey(key string) (*models.OrderSubmission, error) {
	var submission models.OrderSubmission
	err := r.db.Where("idempotency_key = ?", strings.TrimSpace(key)).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// MarkAttempt 记录一次提交尝试
func (r *GormOrderSubmissionRepository) MarkAttempt(key string) error {
	return r.db.Model(&models.OrderSubmission{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]interface{}{
			"status":     constants.SubmissionStatusPending,
			"attempts":   gorm.Expr("attempts + ?", 1),
			"updated_at": time.Now(),
		}).Error
}

// MarkSucceeded 标记提交成功
func (r *GormOrderSubmissionRepository) MarkSucceeded(key, upstreamOrderID, upstreamStatus string) error {
	return r.db.Model(&models.OrderSubmission{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]interface{}{
			"status":            constants.SubmissionStatusSucceeded,
			"upstream_order_id": upstreamOrderID,
			"upstream_status":   upstreamStatus,
			"error_message":     "",
			"updated_at":        time.Now(),
		}).Error
}

// MarkFailed 标记提交失败
func (r *GormOrderSubmissionRepository) MarkFailed(key, message string) error {
	if len(message) > 500 {
		message = message[:500]
	}
	return r.db.Model(&models.OrderSubmission{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]interface{}{
			"status":        constants.SubmissionStatusFailed,
			"error_message": message,
			"updated_at":    time.Now(),
		}).Error
}

// ListBySession 分页查询会话在某门店的下单流水
func (r *GormOrderSubmissionRepository) ListBySession(filter SubmissionListFilter) ([]models.OrderSubmission, int64, error) {
	query := r.db.Model(&models.OrderSubmission{}).Where("session_id = ?", filter.SessionID)
	if scope := strings.TrimSpace(filter.RestaurantScope); scope != "" {
		query = query.Where("restaurant_scope = ?", scope)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var submissions []models.OrderSubmission
	if err := query.Order("id desc").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}
