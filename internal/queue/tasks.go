package queue

import (
	"encoding/json"
	"time"

	"github.com/comanda-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCheckoutReset 下单成功后回到空闲状态
	TaskCheckoutReset = constants.TaskCheckoutReset
	// TaskTableExpire 桌号绑定到期清理
	TaskTableExpire = constants.TaskTableExpire
)

// CheckoutResetPayload 下单状态回退任务载荷
type CheckoutResetPayload struct {
	SessionID       string    `json:"session_id"`
	RestaurantScope string    `json:"restaurant_scope"`
	RevertAt        time.Time `json:"revert_at"`
}

// TableExpirePayload 桌号到期任务载荷
type TableExpirePayload struct {
	SessionID       string    `json:"session_id"`
	RestaurantScope string    `json:"restaurant_scope"`
	BoundAt         time.Time `json:"bound_at"`
}

// NewCheckoutResetTask 创建下单状态回退任务
func NewCheckoutResetTask(payload CheckoutResetPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutReset, body), nil
}

// NewTableExpireTask 创建桌号到期任务
func NewTableExpireTask(payload TableExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTableExpire, body), nil
}
