package shared

import (
	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/i18n"
	"github.com/handmade-market/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 返回绑定请求上下文字段（request_id、操作者）的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil || c.Request == nil {
		return logger.S()
	}
	return logger.C(c.Request.Context())
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"key", key,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}
