package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/handmade-market/internal/authz"
	"github.com/handmade-market/internal/cache"
	"github.com/handmade-market/internal/config"
	adminhandlers "github.com/handmade-market/internal/http/handlers/admin"
	publichandlers "github.com/handmade-market/internal/http/handlers/public"
	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "hm"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:staff_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}
	cancelRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order_cancel", redisPrefix),
		WindowSeconds: cfg.Security.CancelRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CancelRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CancelRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/cancel-reasons", publicHandler.ListCancelReasons)
		}

		// 顾客接口（前台 JWT）
		userGroup := apiV1.Group("")
		userGroup.Use(UserJWTAuthMiddleware(c.AuthService))
		{
			userGroup.POST("/orders", publicHandler.CreateOrder)
			userGroup.GET("/orders", publicHandler.ListOrders)
			userGroup.GET("/orders/:id", publicHandler.GetOrder)
			userGroup.POST("/orders/:id/transitions", publicHandler.TransitionOrder)
			userGroup.POST("/orders/:id/cancel", RateLimitMiddleware(redisClient, cancelRule, KeyByActor), publicHandler.CancelOrder)
			userGroup.GET("/orders/:id/status-history", publicHandler.GetOrderStatusHistory)
			userGroup.GET("/orders/:id/payment", publicHandler.GetOrderPayment)
		}

		// 后台接口
		adminGroup := apiV1.Group("/admin")
		{
			adminGroup.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.StaffLogin)

			authorized := adminGroup.Group("")
			authorized.Use(StaffJWTAuthMiddleware(c.AuthService), StaffRBACMiddleware(c.AuthzService))
			{
				// 订单
				authorized.GET("/orders", adminHandler.GetAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.POST("/orders/:id/transitions", adminHandler.TransitionAdminOrder)
				authorized.POST("/orders/:id/cancel", RateLimitMiddleware(redisClient, cancelRule, KeyByActor), adminHandler.CancelAdminOrder)
				authorized.GET("/orders/:id/status-history", adminHandler.GetAdminOrderStatusHistory)
				authorized.GET("/status-changes", adminHandler.GetAdminStatusChanges)
				authorized.DELETE("/status-changes/:id", adminHandler.DeleteAdminStatusChange)

				// 取消原因
				authorized.GET("/cancel-reasons", adminHandler.GetAdminCancelReasons)
				authorized.POST("/cancel-reasons", adminHandler.CreateCancelReason)
				authorized.GET("/cancel-reasons/:id", adminHandler.GetAdminCancelReason)
				authorized.PUT("/cancel-reasons/:id", adminHandler.UpdateCancelReason)
				authorized.DELETE("/cancel-reasons/:id", adminHandler.DeleteCancelReason)

				// 支付与对账
				authorized.POST("/payments/:id/complete", adminHandler.CompletePayment)
				authorized.POST("/reconciler/run", adminHandler.RunReconciler)

				// 权限
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.PUT("/authz/staff/:id/roles", adminHandler.SetStaffRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildStaffPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type staffPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildStaffPermissionCatalog(engine *gin.Engine) []staffPermissionCatalogItem {
	if engine == nil {
		return []staffPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]staffPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, staffPermissionCatalogItem{
			Module:     deriveStaffPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveStaffPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
