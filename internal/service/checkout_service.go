package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/upstream"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultInFlightTimeout = 2 * time.Minute

// OrderGateway 上游下单与买单
type OrderGateway interface {
	CreateOrder(ctx context.Context, req upstream.CreateOrderRequest) (*upstream.OrderResponse, error)
	FinalizeBill(ctx context.Context, req upstream.FinalizeRequest) error
}

// CheckoutOptions 结账配置
type CheckoutOptions struct {
	SuccessRevert        time.Duration
	ConfirmationPath     string
	ClearTableOnFinalize bool
	InFlightTimeout      time.Duration
}

// SubmitOrderInput 下单输入
type SubmitOrderInput struct {
	SessionID    string
	Scope        string
	Observations string
	OrderType    string
	SplitCount   int
	IsGuest      bool
	GuestInfo    *upstream.GuestInfo
}

// SubmitOrderResult 下单结果
type SubmitOrderResult struct {
	OrderID        string                `json:"orderId"`
	OrderStatus    string                `json:"orderStatus"`
	IdempotencyKey string                `json:"idempotencyKey"`
	Replayed       bool                  `json:"replayed"`
	Totals         *Totals               `json:"totals"`
	State          *models.CheckoutState `json:"state"`
}

// FinalizeResult 请求买单结果
type FinalizeResult struct {
	TableNumber string                `json:"tableNumber"`
	SplitCount  int                   `json:"splitCount"`
	RedirectURL string                `json:"redirectUrl"`
	State       *models.CheckoutState `json:"state"`
}

// CheckoutService 下单与买单编排
type CheckoutService struct {
	stateRepo      repository.CheckoutStateRepository
	submissionRepo repository.OrderSubmissionRepository
	cartService    *CartService
	catalogService *CatalogService
	tableService   *TableService
	gateway        OrderGateway
	queueClient    *queue.Client
	opts           CheckoutOptions
	locks          *keyedMutex
	now            func() time.Time
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(
	stateRepo repository.CheckoutStateRepository,
	submissionRepo repository.OrderSubmissionRepository,
	cartService *CartService,
	catalogService *CatalogService,
	tableService *TableService,
	gateway OrderGateway,
	queueClient *queue.Client,
	opts CheckoutOptions,
) *CheckoutService {
	if opts.InFlightTimeout <= 0 {
		opts.InFlightTimeout = defaultInFlightTimeout
	}
	if strings.TrimSpace(opts.ConfirmationPath) == "" {
		opts.ConfirmationPath = "/order-confirmation"
	}
	return &CheckoutService{
		stateRepo:      stateRepo,
		submissionRepo: submissionRepo,
		cartService:    cartService,
		catalogService: catalogService,
		tableService:   tableService,
		gateway:        gateway,
		queueClient:    queueClient,
		opts:           opts,
		locks:          newKeyedMutex(),
		now:            time.Now,
	}
}

func (s *CheckoutService) lock(sessionID, scope string) func() {
	return s.locks.Lock(sessionScopeKey(sessionID, scope))
}

// State 获取结账状态，成功状态到期后自动回到空闲
func (s *CheckoutService) State(ctx context.Context, sessionID, scope string) (*models.CheckoutState, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(sessionID, scope)
	defer unlock()
	return s.loadState(ctx, sessionID, scope)
}

func (s *CheckoutService) loadState(ctx context.Context, sessionID, scope string) (*models.CheckoutState, error) {
	state, err := s.stateRepo.Get(ctx, sessionID, scope)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	if s.revertIfDue(state) {
		if err := s.saveState(ctx, sessionID, scope, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// revertIfDue 处理到期的成功状态与超时未结束的进行中状态
func (s *CheckoutService) revertIfDue(state *models.CheckoutState) bool {
	now := s.now()
	changed := false
	if state.OrderPhase == constants.OrderPhaseSuccess && state.RevertAt != nil && !now.Before(*state.RevertAt) {
		state.OrderPhase = constants.OrderPhaseIdle
		state.RevertAt = nil
		state.OrderID = ""
		state.OrderStatus = ""
		changed = true
	}
	stale := !state.UpdatedAt.IsZero() && now.Sub(state.UpdatedAt) > s.opts.InFlightTimeout
	if state.OrderPhase == constants.OrderPhaseSubmitting && stale {
		state.OrderPhase = constants.OrderPhaseFailed
		state.LastError = constants.CheckoutErrorOrderSubmitTimeout
		changed = true
	}
	if (state.BillPhase == constants.BillPhaseFinalizeRequested || state.BillPhase == constants.BillPhaseFinalizing) && stale {
		state.BillPhase = constants.BillPhaseFinalizeFailed
		state.LastError = constants.CheckoutErrorBillFinalizeTimeout
		changed = true
	}
	return changed
}

func (s *CheckoutService) saveState(ctx context.Context, sessionID, scope string, state *models.CheckoutState) error {
	state.UpdatedAt = s.now()
	if err := s.stateRepo.Save(ctx, sessionID, scope, state); err != nil {
		return wrapStorageError(err)
	}
	return nil
}

// SubmitOrder 提交订单
//
// 前置条件：已绑定桌号、购物车非空、没有进行中的提交。
// 成功后从购物车扣除已提交的商品并进入 success，失败保留购物车并进入 failed（可再次提交）。
func (s *CheckoutService) SubmitOrder(ctx context.Context, input SubmitOrderInput) (*SubmitOrderResult, error) {
	scope, err := NormalizeScope(input.Scope)
	if err != nil {
		return nil, err
	}
	orderType, err := NormalizeOrderType(input.OrderType)
	if err != nil {
		return nil, err
	}
	if input.SplitCount < 1 {
		return nil, ErrSplitCountInvalid
	}
	sessionID := input.SessionID
	log := logger.ForScope(sessionID, scope)

	unlock := s.lock(sessionID, scope)
	defer unlock()

	state, err := s.loadState(ctx, sessionID, scope)
	if err != nil {
		return nil, err
	}
	if state.OrderPhase == constants.OrderPhaseSubmitting {
		return nil, ErrCheckoutInFlight
	}

	binding, err := s.tableService.GetBinding(ctx, sessionID, scope)
	if err != nil {
		return nil, err
	}
	if binding == nil {
		return nil, ErrTableNotBound
	}
	_, tableNumber, err := NormalizeTableNumber(binding.TableNumber)
	if err != nil {
		return nil, err
	}

	items, err := s.cartService.Get(ctx, sessionID, scope)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	snapshot, err := s.catalogService.Load(ctx, sessionID, scope, false)
	if err != nil {
		return nil, err
	}
	totals, err := ComputeTotals(items, snapshot.Products, orderType, input.SplitCount)
	if err != nil {
		return nil, err
	}
	if len(totals.Lines) == 0 {
		return nil, ErrCartEmpty
	}

	req := buildCreateOrderRequest(scope, tableNumber, input, orderType, totals)
	fingerprint, err := draftFingerprint(req)
	if err != nil {
		return nil, err
	}
	key := uuid.NewString()
	if state.PendingKey != "" && state.PendingFingerprint == fingerprint {
		key = state.PendingKey
	}
	req.IdempotencyKey = key

	existing, err := s.submissionRepo.GetByKey(key)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	if existing != nil && existing.Status == constants.SubmissionStatusSucceeded {
		log.Infow("checkout_submit_replayed", "idempotency_key", key, "order_id", existing.UpstreamOrderID)
		return s.completeSubmission(ctx, sessionID, scope, state, key, existing.UpstreamOrderID, existing.UpstreamStatus, totals, true)
	}
	if existing == nil {
		snapshotJSON, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		submission := &models.OrderSubmission{
			IdempotencyKey:  key,
			SessionID:       sessionID,
			RestaurantScope: scope,
			TableNumber:     tableNumber,
			OrderType:       orderType,
			SplitCount:      input.SplitCount,
			TotalAmount:     totals.Total,
			Fingerprint:     fingerprint,
			Status:          constants.SubmissionStatusPending,
			RequestSnapshot: datatypes.JSON(snapshotJSON),
		}
		if err := s.submissionRepo.Create(submission); err != nil {
			return nil, wrapStorageError(err)
		}
	}
	if err := s.submissionRepo.MarkAttempt(key); err != nil {
		log.Warnw("checkout_submission_mark_attempt_failed", "idempotency_key", key, "error", err)
	}

	state.OrderPhase = constants.OrderPhaseSubmitting
	state.PendingKey = key
	state.PendingFingerprint = fingerprint
	state.LastError = ""
	if err := s.saveState(ctx, sessionID, scope, state); err != nil {
		return nil, err
	}

	resp, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		log.Warnw("checkout_submit_failed",
			"idempotency_key", key,
			"table_number", tableNumber,
			"total", totals.Total.String(),
			"error", err,
		)
		if markErr := s.submissionRepo.MarkFailed(key, err.Error()); markErr != nil {
			log.Warnw("checkout_submission_mark_failed_failed", "idempotency_key", key, "error", markErr)
		}
		state.OrderPhase = constants.OrderPhaseFailed
		state.LastError = constants.CheckoutErrorOrderSubmitFailed
		if saveErr := s.saveState(context.WithoutCancel(ctx), sessionID, scope, state); saveErr != nil {
			log.Warnw("checkout_state_save_failed", "error", saveErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrOrderSubmitFailed, err)
	}

	if err := s.submissionRepo.MarkSucceeded(key, resp.ID, resp.Status); err != nil {
		log.Warnw("checkout_submission_mark_succeeded_failed", "idempotency_key", key, "error", err)
	}
	log.Infow("checkout_submit_succeeded",
		"idempotency_key", key,
		"order_id", resp.ID,
		"table_number", tableNumber,
		"total", totals.Total.String(),
	)
	return s.completeSubmission(context.WithoutCancel(ctx), sessionID, scope, state, key, resp.ID, resp.Status, totals, false)
}

func (s *CheckoutService) completeSubmission(
	ctx context.Context,
	sessionID, scope string,
	state *models.CheckoutState,
	key, orderID, orderStatus string,
	totals *Totals,
	replayed bool,
) (*SubmitOrderResult, error) {
	if _, err := s.cartService.RemoveSubmitted(ctx, sessionID, scope, totals.Lines, totals.DroppedProductIDs); err != nil {
		logger.ForScope(sessionID, scope).Warnw("checkout_cart_settle_failed", "error", err)
	}
	revertAt := s.now().Add(s.opts.SuccessRevert)
	state.OrderPhase = constants.OrderPhaseSuccess
	state.OrderID = orderID
	state.OrderStatus = orderStatus
	state.PendingKey = ""
	state.PendingFingerprint = ""
	state.LastError = ""
	state.RevertAt = &revertAt
	if err := s.saveState(ctx, sessionID, scope, state); err != nil {
		return nil, err
	}
	if err := s.queueClient.EnqueueCheckoutReset(queue.CheckoutResetPayload{
		SessionID:       sessionID,
		RestaurantScope: scope,
		RevertAt:        revertAt,
	}, s.opts.SuccessRevert); err != nil {
		logger.ForScope(sessionID, scope).Warnw("checkout_reset_enqueue_failed", "error", err)
	}
	return &SubmitOrderResult{
		OrderID:        orderID,
		OrderStatus:    orderStatus,
		IdempotencyKey: key,
		Replayed:       replayed,
		Totals:         totals,
		State:          state,
	}, nil
}

// FinalizeOrder 请求买单，与购物车无关；成功后清空购物车并返回确认页地址
func (s *CheckoutService) FinalizeOrder(ctx context.Context, sessionID, scope string, splitCount int) (*FinalizeResult, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, err
	}
	if splitCount < 1 {
		return nil, ErrSplitCountInvalid
	}
	log := logger.ForScope(sessionID, scope)

	unlock := s.lock(sessionID, scope)
	defer unlock()

	state, err := s.loadState(ctx, sessionID, scope)
	if err != nil {
		return nil, err
	}
	if state.BillPhase == constants.BillPhaseFinalizeRequested || state.BillPhase == constants.BillPhaseFinalizing {
		return nil, ErrCheckoutInFlight
	}

	binding, err := s.tableService.GetBinding(ctx, sessionID, scope)
	if err != nil {
		return nil, err
	}
	if binding == nil {
		return nil, ErrTableNotBound
	}
	tableLabel, tableNumber, err := NormalizeTableNumber(binding.TableNumber)
	if err != nil {
		return nil, err
	}

	state.BillPhase = constants.BillPhaseFinalizeRequested
	state.LastError = ""
	state.RedirectURL = ""
	if err := s.saveState(ctx, sessionID, scope, state); err != nil {
		return nil, err
	}

	state.BillPhase = constants.BillPhaseFinalizing
	if err := s.saveState(ctx, sessionID, scope, state); err != nil {
		return nil, err
	}

	err = s.gateway.FinalizeBill(ctx, upstream.FinalizeRequest{
		RestaurantUnitID: scope,
		TableNumber:      tableNumber,
		SplitCount:       splitCount,
	})
	if err != nil {
		log.Warnw("checkout_finalize_failed", "table_number", tableNumber, "split_count", splitCount, "error", err)
		state.BillPhase = constants.BillPhaseFinalizeFailed
		state.LastError = constants.CheckoutErrorBillFinalizeFailed
		if saveErr := s.saveState(context.WithoutCancel(ctx), sessionID, scope, state); saveErr != nil {
			log.Warnw("checkout_state_save_failed", "error", saveErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrBillFinalizeFailed, err)
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.cartService.Clear(ctx, sessionID, scope); err != nil {
		log.Warnw("checkout_cart_clear_failed", "error", err)
	}
	if s.opts.ClearTableOnFinalize {
		if err := s.tableService.ClearTable(ctx, sessionID, scope); err != nil {
			log.Warnw("checkout_table_clear_failed", "error", err)
		}
	}

	redirectURL := BuildConfirmationURL(s.opts.ConfirmationPath, tableLabel, splitCount)
	state.BillPhase = constants.BillPhaseFinalizeSuccess
	state.RedirectURL = redirectURL
	if err := s.saveState(ctx, sessionID, scope, state); err != nil {
		return nil, err
	}
	log.Infow("checkout_finalize_succeeded", "table_number", tableNumber, "split_count", splitCount)
	return &FinalizeResult{
		TableNumber: tableLabel,
		SplitCount:  splitCount,
		RedirectURL: redirectURL,
		State:       state,
	}, nil
}

// ResetOrderPhase 将到期的成功状态回退为空闲，返回是否发生回退
func (s *CheckoutService) ResetOrderPhase(ctx context.Context, sessionID, scope string, revertAt time.Time) (bool, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return false, err
	}
	unlock := s.lock(sessionID, scope)
	defer unlock()

	state, err := s.stateRepo.Get(ctx, sessionID, scope)
	if err != nil {
		return false, wrapStorageError(err)
	}
	if state.OrderPhase != constants.OrderPhaseSuccess || state.RevertAt == nil {
		return false, nil
	}
	// 已被新的下单覆盖
	if !state.RevertAt.Equal(revertAt) {
		return false, nil
	}
	state.OrderPhase = constants.OrderPhaseIdle
	state.RevertAt = nil
	state.OrderID = ""
	state.OrderStatus = ""
	if err := s.saveState(ctx, sessionID, scope, state); err != nil {
		return false, err
	}
	return true, nil
}

// ListSubmissions 分页查询会话下单流水
func (s *CheckoutService) ListSubmissions(sessionID, scope string, page, pageSize int) ([]models.OrderSubmission, int64, error) {
	scope, err := NormalizeScope(scope)
	if err != nil {
		return nil, 0, err
	}
	submissions, total, err := s.submissionRepo.ListBySession(repository.SubmissionListFilter{
		Page:            page,
		PageSize:        pageSize,
		SessionID:       sessionID,
		RestaurantScope: scope,
	})
	if err != nil {
		return nil, 0, wrapStorageError(err)
	}
	return submissions, total, nil
}

// BuildConfirmationURL 生成确认页地址，如 /order-confirmation?table=7&split=2
func BuildConfirmationURL(path, tableNumber string, splitCount int) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/order-confirmation"
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%s%s=%s&%s=%d",
		path, separator,
		constants.ConfirmationQueryTable, url.QueryEscape(tableNumber),
		constants.ConfirmationQuerySplit, splitCount,
	)
}

func buildCreateOrderRequest(scope string, tableNumber int, input SubmitOrderInput, orderType string, totals *Totals) upstream.CreateOrderRequest {
	items := make([]upstream.OrderItem, 0, len(totals.Lines))
	for _, line := range totals.Lines {
		items = append(items, upstream.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.Float64(),
		})
	}
	req := upstream.CreateOrderRequest{
		RestaurantUnitID: scope,
		Items:            items,
		TotalAmount:      totals.Total.Float64(),
		Observations:     strings.TrimSpace(input.Observations),
		OrderType:        orderType,
		TableNumber:      tableNumber,
		SplitCount:       input.SplitCount,
		IsGuest:          input.IsGuest,
	}
	if input.IsGuest && input.GuestInfo != nil {
		guest := *input.GuestInfo
		req.GuestInfo = &guest
	}
	return req
}

// draftFingerprint 订单草稿指纹（不含幂等键）
func draftFingerprint(req upstream.CreateOrderRequest) (string, error) {
	req.IdempotencyKey = ""
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
