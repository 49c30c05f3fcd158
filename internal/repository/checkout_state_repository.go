package repository

import (
	"context"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/store"
)

// CheckoutStateRepository 结账状态数据访问接口
type CheckoutStateRepository interface {
	Get(ctx context.Context, sessionID, scope string) (*models.CheckoutState, error)
	Save(ctx context.Context, sessionID, scope string, state *models.CheckoutState) error
	Delete(ctx context.Context, sessionID, scope string) error
}

// KVCheckoutStateRepository 基于会话存储的实现，key 为 checkout-<scope>
type KVCheckoutStateRepository struct {
	kv store.KV
}

// NewCheckoutStateRepository 创建结账状态仓库
func NewCheckoutStateRepository(kv store.KV) *KVCheckoutStateRepository {
	return &KVCheckoutStateRepository{kv: kv}
}

// Get 读取状态，不存在时返回空闲状态
func (r *KVCheckoutStateRepository) Get(ctx context.Context, sessionID, scope string) (*models.CheckoutState, error) {
	state := models.CheckoutState{}
	if _, err := loadJSON(ctx, store.Namespace(r.kv, sessionID), checkoutKey(scope), &state); err != nil {
		return nil, err
	}
	if state.OrderPhase == "" {
		state.OrderPhase = constants.OrderPhaseIdle
	}
	if state.BillPhase == "" {
		state.BillPhase = constants.BillPhaseIdle
	}
	return &state, nil
}

// Save 写入状态
func (r *KVCheckoutStateRepository) Save(ctx context.Context, sessionID, scope string, state *models.CheckoutState) error {
	if state == nil {
		return nil
	}
	return saveJSON(ctx, store.Namespace(r.kv, sessionID), checkoutKey(scope), state, 0)
}

// Delete 删除状态
func (r *KVCheckoutStateRepository) Delete(ctx context.Context, sessionID, scope string) error {
	return store.Namespace(r.kv, sessionID).Delete(ctx, checkoutKey(scope))
}

func checkoutKey(scope string) string {
	return store.ScopedKey(constants.StoreKeyCheckout, scope)
}
