package shared

import (
	"strings"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetSessionID 从上下文读取会话 ID，缺失时直接返回 401。
func GetSessionID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeySessionID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return "", false
	}
	sessionID, ok := value.(string)
	if !ok || strings.TrimSpace(sessionID) == "" {
		RespondError(c, response.CodeUnauthorized, "error.session_invalid", nil)
		return "", false
	}
	return sessionID, true
}
