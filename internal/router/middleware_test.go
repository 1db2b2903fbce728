package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/handmade-market/internal/authz"
	"github.com/handmade-market/internal/config"
	handlershared "github.com/handmade-market/internal/http/handlers/shared"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func decodeStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func newTestAuthService() *service.AuthService {
	cfg := &config.Config{
		JWT:     config.JWTConfig{SecretKey: "staff-secret", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "user-secret", ExpireHours: 1},
	}
	return service.NewAuthService(cfg, nil)
}

func TestStaffJWTAuthMiddlewareWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(StaffJWTAuthMiddleware(nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if code := decodeStatusCode(t, w); code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authService := newTestAuthService()

	r := gin.New()
	r.Use(UserJWTAuthMiddleware(authService))
	r.GET("/orders", func(c *gin.Context) {
		actor, ok := handlershared.CurrentActor(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "actor": actor.Name()})
	})

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{name: "missing", header: "", code: 401},
		{name: "malformed", header: "Token abc", code: 401},
		{name: "garbage", header: "Bearer abc", code: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if code := decodeStatusCode(t, w); code != tc.code {
				t.Fatalf("status_code want %d got %d", tc.code, code)
			}
		})
	}

	token, _, err := authService.GenerateUserJWT(42, "")
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"actor":"user:42"`) {
		t.Fatalf("expected customer actor, got %s", w.Body.String())
	}
}

func TestStaffRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_rbac_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	if err := authzService.SetStaffRoles(5, []string{"readonly_auditor"}); err != nil {
		t.Fatalf("set staff roles failed: %v", err)
	}

	newEngine := func(staffID uint, isSuper bool) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(staffIDContextKey, staffID)
			c.Set(staffIsSuperContextKey, isSuper)
			c.Next()
		})
		r.Use(StaffRBACMiddleware(authzService))
		ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status_code": 0}) }
		r.GET("/api/v1/admin/orders", ok)
		r.POST("/api/v1/admin/orders/:id/cancel", ok)
		return r
	}

	cases := []struct {
		name    string
		staffID uint
		isSuper bool
		method  string
		path    string
		code    int
	}{
		{name: "auditor read", staffID: 5, method: http.MethodGet, path: "/api/v1/admin/orders", code: 0},
		{name: "auditor cancel denied", staffID: 5, method: http.MethodPost, path: "/api/v1/admin/orders/1/cancel", code: 403},
		{name: "super bypass", staffID: 6, isSuper: true, method: http.MethodPost, path: "/api/v1/admin/orders/1/cancel", code: 0},
		{name: "missing staff", staffID: 0, method: http.MethodGet, path: "/api/v1/admin/orders", code: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, nil)
			newEngine(tc.staffID, tc.isSuper).ServeHTTP(w, req)
			if code := decodeStatusCode(t, w); code != tc.code {
				t.Fatalf("status_code want %d got %d, body=%s", tc.code, code, w.Body.String())
			}
		})
	}
}
