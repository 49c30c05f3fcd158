package shared

import (
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 与 session_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	kv := make([]interface{}, 0, 4)
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			kv = append(kv, "request_id", id)
		}
	}
	if sessionID, ok := c.Get("session_id"); ok {
		if id, ok := sessionID.(string); ok && id != "" {
			kv = append(kv, "session_id", id)
		}
	}
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// RespondError 按消息 key 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	appErr := response.NewAppError(code, key, err)
	if err != nil {
		log := RequestLog(c)
		fields := []interface{}{
			"code", appErr.Code,
			"message_key", appErr.Key,
			"error", err,
		}
		if appErr.Internal() {
			log.Errorw("handler_error", fields...)
		} else {
			log.Warnw("handler_error", fields...)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}
