package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/provider"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCheckoutReset, c.handleCheckoutReset)
	mux.HandleFunc(queue.TaskTableExpire, c.handleTableExpire)
}

func (c *Consumer) handleCheckoutReset(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.CheckoutService == nil {
		logger.Debugw("worker_checkout_reset_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CheckoutResetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_checkout_reset_unmarshal_failed", "error", err)
		return skipRetry(err)
	}
	if strings.TrimSpace(payload.SessionID) == "" || strings.TrimSpace(payload.RestaurantScope) == "" {
		logger.Debugw("worker_checkout_reset_skip_invalid_payload",
			"session_id", payload.SessionID,
			"restaurant_scope", payload.RestaurantScope,
		)
		return nil
	}
	reverted, err := c.CheckoutService.ResetOrderPhase(ctx, payload.SessionID, payload.RestaurantScope, payload.RevertAt)
	if err != nil {
		logger.Warnw("worker_checkout_reset_failed",
			"session_id", payload.SessionID,
			"restaurant_scope", payload.RestaurantScope,
			"error", err,
		)
		return retryable(err)
	}
	logger.Debugw("worker_checkout_reset_done",
		"session_id", payload.SessionID,
		"restaurant_scope", payload.RestaurantScope,
		"reverted", reverted,
	)
	return nil
}

func (c *Consumer) handleTableExpire(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.TableService == nil {
		logger.Debugw("worker_table_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TableExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_table_expire_unmarshal_failed", "error", err)
		return skipRetry(err)
	}
	if strings.TrimSpace(payload.SessionID) == "" || strings.TrimSpace(payload.RestaurantScope) == "" {
		logger.Debugw("worker_table_expire_skip_invalid_payload",
			"session_id", payload.SessionID,
			"restaurant_scope", payload.RestaurantScope,
		)
		return nil
	}
	cleared, err := c.TableService.ExpireTable(ctx, payload.SessionID, payload.RestaurantScope, payload.BoundAt)
	if err != nil {
		logger.Warnw("worker_table_expire_failed",
			"session_id", payload.SessionID,
			"restaurant_scope", payload.RestaurantScope,
			"error", err,
		)
		return retryable(err)
	}
	if cleared {
		logger.Infow("worker_table_expired",
			"session_id", payload.SessionID,
			"restaurant_scope", payload.RestaurantScope,
		)
	}
	return nil
}

// skipRetry 标记为不再重试的任务错误
func skipRetry(err error) error {
	return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
}

// retryable 载荷本身非法时不再重试，其余错误交给队列重试
func retryable(err error) error {
	if errors.Is(err, service.ErrScopeInvalid) {
		return skipRetry(err)
	}
	return err
}
