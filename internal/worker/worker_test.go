package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/provider"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/service"
	"github.com/comanda-next/internal/store"

	"github.com/hibiken/asynq"
)

func newTestConsumer() (*Consumer, *store.MemoryStore) {
	kv := store.NewMemoryStore()
	c := &provider.Container{Config: &config.Config{}, Store: kv}
	c.CartRepo = repository.NewCartRepository(kv)
	c.TableRepo = repository.NewTableRepository(kv)
	c.CheckoutStateRepo = repository.NewCheckoutStateRepository(kv)
	c.CartService = service.NewCartService(c.CartRepo)
	c.TableService = service.NewTableService(c.TableRepo, nil, 0)
	c.CheckoutService = service.NewCheckoutService(
		c.CheckoutStateRepo, nil, c.CartService, nil, c.TableService, nil, nil, service.CheckoutOptions{},
	)
	return NewConsumer(c), kv
}

func TestHandleCheckoutResetRevertsMatchingSuccess(t *testing.T) {
	consumer, _ := newTestConsumer()
	ctx := context.Background()
	revertAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	state := &models.CheckoutState{
		OrderPhase: constants.OrderPhaseSuccess,
		BillPhase:  constants.BillPhaseIdle,
		OrderID:    "o-1",
		RevertAt:   &revertAt,
		UpdatedAt:  time.Now(),
	}
	if err := consumer.CheckoutStateRepo.Save(ctx, "s1", "r1", state); err != nil {
		t.Fatalf("save state failed: %v", err)
	}

	// 过期的任务（revertAt 不匹配）不应回退
	stale, err := queue.NewCheckoutResetTask(queue.CheckoutResetPayload{SessionID: "s1", RestaurantScope: "r1", RevertAt: revertAt.Add(-time.Minute)})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleCheckoutReset(ctx, stale); err != nil {
		t.Fatalf("handle stale task failed: %v", err)
	}
	got, err := consumer.CheckoutStateRepo.Get(ctx, "s1", "r1")
	if err != nil {
		t.Fatalf("get state failed: %v", err)
	}
	if got.OrderPhase != constants.OrderPhaseSuccess {
		t.Fatalf("stale task must not revert, got %s", got.OrderPhase)
	}

	task, err := queue.NewCheckoutResetTask(queue.CheckoutResetPayload{SessionID: "s1", RestaurantScope: "r1", RevertAt: revertAt})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleCheckoutReset(ctx, task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}
	got, err = consumer.CheckoutStateRepo.Get(ctx, "s1", "r1")
	if err != nil {
		t.Fatalf("get state failed: %v", err)
	}
	if got.OrderPhase != constants.OrderPhaseIdle || got.OrderID != "" {
		t.Fatalf("expected idle after reset, got %+v", got)
	}
}

func TestHandleTableExpireOnlyClearsSameBinding(t *testing.T) {
	consumer, _ := newTestConsumer()
	ctx := context.Background()

	binding, err := consumer.TableService.BindTable(ctx, "s1", "r1", "9")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	other, err := queue.NewTableExpireTask(queue.TableExpirePayload{SessionID: "s1", RestaurantScope: "r1", BoundAt: binding.BoundAt.Add(-time.Hour)})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleTableExpire(ctx, other); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}
	if current, _ := consumer.TableService.GetBinding(ctx, "s1", "r1"); current == nil {
		t.Fatalf("rebinding must survive an older expire task")
	}

	task, err := queue.NewTableExpireTask(queue.TableExpirePayload{SessionID: "s1", RestaurantScope: "r1", BoundAt: binding.BoundAt})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleTableExpire(ctx, task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}
	if current, _ := consumer.TableService.GetBinding(ctx, "s1", "r1"); current != nil {
		t.Fatalf("expected binding cleared, got %+v", current)
	}
}

func TestHandlersRejectBrokenPayload(t *testing.T) {
	consumer, _ := newTestConsumer()
	ctx := context.Background()

	err := consumer.handleCheckoutReset(ctx, asynq.NewTask(queue.TaskCheckoutReset, []byte("{")))
	if err == nil || !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected non-retryable unmarshal error, got %v", err)
	}
	if err := consumer.handleTableExpire(ctx, asynq.NewTask(queue.TaskTableExpire, []byte(`{"session_id":""}`))); err != nil {
		t.Fatalf("empty payload should be skipped, got %v", err)
	}
}

func TestHandlersSkipRetryForInvalidScope(t *testing.T) {
	consumer, _ := newTestConsumer()
	ctx := context.Background()

	reset, _ := json.Marshal(queue.CheckoutResetPayload{SessionID: "s1", RestaurantScope: "bad scope!", RevertAt: time.Now()})
	err := consumer.handleCheckoutReset(ctx, asynq.NewTask(queue.TaskCheckoutReset, reset))
	if !errors.Is(err, asynq.SkipRetry) || !errors.Is(err, service.ErrScopeInvalid) {
		t.Fatalf("invalid scope must not be retried, got %v", err)
	}

	expire, _ := json.Marshal(queue.TableExpirePayload{SessionID: "s1", RestaurantScope: "bad scope!", BoundAt: time.Now()})
	err = consumer.handleTableExpire(ctx, asynq.NewTask(queue.TaskTableExpire, expire))
	if !errors.Is(err, asynq.SkipRetry) || !errors.Is(err, service.ErrScopeInvalid) {
		t.Fatalf("invalid scope must not be retried, got %v", err)
	}
}

func TestNewServiceRequiresQueueOrPurge(t *testing.T) {
	consumer, kv := newTestConsumer()
	if _, err := NewService(&config.QueueConfig{Enabled: false}, consumer, nil, 0); err == nil {
		t.Fatalf("expected error without queue and purge")
	}
	svc, err := NewService(&config.QueueConfig{Enabled: false}, consumer, kv, time.Minute)
	if err != nil {
		t.Fatalf("purge-only worker should start: %v", err)
	}
	if svc.server != nil {
		t.Fatalf("queue server must not be created when disabled")
	}
}

func TestPurgeLoopStopsWithContext(t *testing.T) {
	consumer, kv := newTestConsumer()
	ctx := context.Background()
	if err := kv.Set(ctx, "s:s1:table-r1", "{}", time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	svc, err := NewService(nil, consumer, kv, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("new service failed: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Start(runCtx) }()

	deadline := time.Now().Add(2 * time.Second)
	for kv.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	if kv.Len() != 0 {
		t.Fatalf("expected expired entry purged, len=%d", kv.Len())
	}
}
