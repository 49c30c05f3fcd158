package public

import (
	"github.com/comanda-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateSession 创建匿名桌台会话
func (h *Handler) CreateSession(c *gin.Context) {
	issued, err := h.SessionService.Issue()
	if err != nil {
		respondError(c, response.CodeInternal, "error.session_issue_failed", err)
		return
	}
	requestLog(c).Infow("session_issued", "session_id", issued.SessionID, "expires_at", issued.ExpiresAt)
	response.Success(c, issued)
}
