package public

import (
	"strings"

	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/models"

	"github.com/gin-gonic/gin"
)

// SetCartItemRequest 设置购物车数量请求，数量为 0 表示移除
type SetCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	items, err := h.CartService.Get(c.Request.Context(), sessionID, unitID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": nonNilItems(items)})
}

// SetCartItem 设置商品数量
func (h *Handler) SetCartItem(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	var req SetCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	items, err := h.CartService.SetQuantity(c.Request.Context(), sessionID, unitID, c.Param("product_id"), *req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": nonNilItems(items)})
}

// RemoveCartItem 移除商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	items, err := h.CartService.SetQuantity(c.Request.Context(), sessionID, unitID, c.Param("product_id"), 0)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": nonNilItems(items)})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), sessionID, unitID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": []models.CartItem{}})
}

// GetCartTotals 计算购物车合计（含服务费与分摊）
func (h *Handler) GetCartTotals(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	splitCount, ok := queryInt(c, "split_count", 1)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.split_count_invalid", nil)
		return
	}
	ctx := c.Request.Context()
	items, err := h.CartService.Get(ctx, sessionID, unitID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	totals, err := h.CatalogService.Totals(ctx, sessionID, unitID, items, strings.TrimSpace(c.Query("order_type")), splitCount)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, totals)
}

func nonNilItems(items []models.CartItem) []models.CartItem {
	if items == nil {
		return []models.CartItem{}
	}
	return items
}
