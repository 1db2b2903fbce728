package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	handlershared "github.com/handmade-market/internal/http/handlers/shared"
	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/i18n"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	// BlockSeconds 超限后封禁时长，0 表示窗口到期即解封
	BlockSeconds int
	MessageKey   string
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local block = tonumber(ARGV[3])
if block > 0 and current == tonumber(ARGV[2]) + 1 then
	redis.call("EXPIRE", KEYS[1], block)
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 固定窗口限流；redis 出错时拒绝请求
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := rule.key(c, keyFunc)
		values, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Int64Slice()
		if err != nil || len(values) < 2 {
			logger.C(c.Request.Context()).Errorw("rate_limit_eval_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			c.Abort()
			return
		}

		blocked, retryAfter := rule.decide(values[0], values[1])
		if !blocked {
			c.Next()
			return
		}
		logger.C(c.Request.Context()).Warnw("rate_limit_exceeded",
			"key", key,
			"count", values[0],
			"retry_after", retryAfter,
		)
		msgKey := strings.TrimSpace(rule.MessageKey)
		if msgKey == "" {
			msgKey = "error.rate_limited"
		}
		response.TooManyRequests(c, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, retryAfter), retryAfter)
		c.Abort()
	}
}

func (r RateLimitRule) key(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if r.Prefix != "" {
		key = r.Prefix + ":" + key
	}
	return key
}

// decide 根据当前计数与剩余 TTL 判断是否限流，并给出建议重试秒数
func (r RateLimitRule) decide(count, ttlSeconds int64) (bool, int) {
	if count <= int64(r.MaxRequests) {
		return false, 0
	}
	retryAfter := int(ttlSeconds)
	if retryAfter < 1 {
		retryAfter = r.WindowSeconds
	}
	if retryAfter < 1 {
		retryAfter = 1
	}
	return true, retryAfter
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByActor 使用当前操作者作为限流 key，未登录时退回 IP
func KeyByActor(c *gin.Context) string {
	if value, ok := c.Get(handlershared.ContextActorKey); ok {
		if actor, ok := value.(service.Actor); ok && actor.UserID != 0 {
			return actor.Name()
		}
	}
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}
