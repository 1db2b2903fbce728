package shared

import (
	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// ContextActorKey 鉴权中间件写入的操作者
const ContextActorKey = "actor"

// CurrentActor 读取当前请求的操作者
func CurrentActor(c *gin.Context) (service.Actor, bool) {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.Actor{}, false
	}
	actor, ok := value.(service.Actor)
	if !ok || (actor.UserID == 0 && !actor.IsSystem()) {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return service.Actor{}, false
	}
	return actor, true
}
