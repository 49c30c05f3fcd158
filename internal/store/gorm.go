package store

import (
	"context"
	"errors"
	"time"

	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 store_entries 表的存储
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore 创建数据库存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Get 读取值
func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, ErrUnavailable
	}
	var entry models.StoreEntry
	err := s.db.WithContext(ctx).Where(keyEq(key)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if entry.ExpiresAt != nil && !s.now().Before(*entry.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Set 写入或覆盖值
func (s *GormStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	now := s.now()
	entry := models.StoreEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		entry.ExpiresAt = &expiresAt
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// Delete 删除值
func (s *GormStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	return s.db.WithContext(ctx).Where(keyEq(key)).Delete(&models.StoreEntry{}).Error
}

func keyEq(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

// PurgeExpired 清理已过期条目
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrUnavailable
	}
	result := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).Delete(&models.StoreEntry{})
	return result.RowsAffected, result.Error
}
