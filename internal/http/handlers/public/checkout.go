package public

import (
	"strings"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/service"
	"github.com/comanda-next/internal/upstream"

	"github.com/gin-gonic/gin"
)

// GuestInfoRequest 访客信息
type GuestInfoRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// SubmitOrderRequest 下单请求
type SubmitOrderRequest struct {
	Observations string            `json:"observations"`
	OrderType    string            `json:"order_type"`
	SplitCount   int               `json:"split_count"`
	IsGuest      bool              `json:"is_guest"`
	GuestInfo    *GuestInfoRequest `json:"guest_info"`
}

// FinalizeBillRequest 请求买单
type FinalizeBillRequest struct {
	SplitCount int `json:"split_count"`
}

// SubmitOrder 提交当前购物车为订单
func (h *Handler) SubmitOrder(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.SplitCount == 0 {
		req.SplitCount = 1
	}
	input := service.SubmitOrderInput{
		SessionID:    sessionID,
		Scope:        unitID,
		Observations: req.Observations,
		OrderType:    req.OrderType,
		SplitCount:   req.SplitCount,
		IsGuest:      req.IsGuest,
	}
	if req.IsGuest && req.GuestInfo != nil {
		input.GuestInfo = &upstream.GuestInfo{
			Name:  strings.TrimSpace(req.GuestInfo.Name),
			Phone: strings.TrimSpace(req.GuestInfo.Phone),
			Email: strings.TrimSpace(req.GuestInfo.Email),
		}
	}
	result, err := h.CheckoutService.SubmitOrder(c.Request.Context(), input)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 分页查询本会话的下单记录
func (h *Handler) ListOrders(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	page, pageSize := shared.PageQuery(c)

	submissions, total, err := h.CheckoutService.ListSubmissions(sessionID, unitID, page, pageSize)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.SuccessWithPage(c, submissions, shared.PageInfo(page, pageSize, total))
}

// FinalizeBill 请求买单
func (h *Handler) FinalizeBill(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	var req FinalizeBillRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	if req.SplitCount == 0 {
		req.SplitCount = 1
	}
	result, err := h.CheckoutService.FinalizeOrder(c.Request.Context(), sessionID, unitID, req.SplitCount)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}

// GetCheckoutState 获取下单与买单状态
func (h *Handler) GetCheckoutState(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	state, err := h.CheckoutService.State(c.Request.Context(), sessionID, unitID)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, state)
}
