package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderSubmission 下单提交流水（按幂等键去重）
type OrderSubmission struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                         // 主键
	IdempotencyKey  string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"idempotency_key"` // 幂等键
	SessionID       string         `gorm:"type:varchar(64);index;not null" json:"session_id"`            // 会话ID
	RestaurantScope string         `gorm:"type:varchar(64);index;not null" json:"restaurant_scope"`      // 门店ID
	TableNumber     int            `gorm:"not null" json:"table_number"`                                 // 桌号
	OrderType       string         `gorm:"type:varchar(20);not null" json:"order_type"`                  // 就餐方式
	SplitCount      int            `gorm:"not null;default:1" json:"split_count"`                        // 分摊人数
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 合计金额
	Fingerprint     string         `gorm:"type:varchar(64);index" json:"fingerprint"`                    // 订单草稿指纹
	Status          string         `gorm:"type:varchar(20);index;not null" json:"status"`                // 提交状态
	UpstreamOrderID string         `gorm:"type:varchar(64)" json:"upstream_order_id,omitempty"`          // 上游订单ID
	UpstreamStatus  string         `gorm:"type:varchar(32)" json:"upstream_status,omitempty"`            // 上游订单状态
	RequestSnapshot datatypes.JSON `json:"request_snapshot"`                                             // 请求快照
	ErrorMessage    string         `gorm:"type:varchar(500)" json:"error_message,omitempty"`             // 失败原因
	Attempts        int            `gorm:"not null;default:0" json:"attempts"`                           // 提交次数
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (OrderSubmission) TableName() string {
	return "order_submissions"
}

// StoreEntry 会话键值存储（数据库后端）
type StoreEntry struct {
	Key       string     `gorm:"primarykey;type:varchar(255)" json:"key"` // 存储键
	Value     string     `gorm:"type:text;not null" json:"value"`         // 存储值（JSON 文本）
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`                 // 过期时间
	UpdatedAt time.Time  `json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (StoreEntry) TableName() string {
	return "store_entries"
}
