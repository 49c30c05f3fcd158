package public

import (
	"github.com/comanda-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 前台接口处理器入口
// 说明：该处理器服务于扫码点餐的桌台会话，所有业务接口都以会话 + 门店为作用域。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// sessionAndUnit 读取会话 ID 与路径中的门店 ID
func sessionAndUnit(c *gin.Context) (string, string, bool) {
	sessionID, ok := getSessionID(c)
	if !ok {
		return "", "", false
	}
	return sessionID, c.Param("unit_id"), true
}
