package public

import (
	"github.com/comanda-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// BindTableRequest 绑定桌号请求
type BindTableRequest struct {
	TableNumber string `json:"table_number" binding:"required"`
}

// BindTable 绑定桌号
func (h *Handler) BindTable(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	var req BindTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	binding, err := h.TableService.BindTable(c.Request.Context(), sessionID, unitID, req.TableNumber)
	if err != nil {
		respondTableError(c, err)
		return
	}
	response.Success(c, binding)
}

// GetTable 获取当前桌号
func (h *Handler) GetTable(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	binding, err := h.TableService.GetBinding(c.Request.Context(), sessionID, unitID)
	if err != nil {
		respondTableError(c, err)
		return
	}
	if binding == nil {
		respondError(c, response.CodeNotFound, "error.table_not_bound", nil)
		return
	}
	response.Success(c, binding)
}

// ClearTable 解除桌号绑定
func (h *Handler) ClearTable(c *gin.Context) {
	sessionID, unitID, ok := sessionAndUnit(c)
	if !ok {
		return
	}
	if err := h.TableService.ClearTable(c.Request.Context(), sessionID, unitID); err != nil {
		respondTableError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
