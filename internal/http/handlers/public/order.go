package public

import (
	"strings"

	handlershared "github.com/handmade-market/internal/http/handlers/shared"
	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/i18n"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	VariationID uint `json:"variation_id" binding:"required"`
	Quantity    int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required"`
	Address       string             `json:"address" binding:"required"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Phone         string             `json:"phone"`
	Note          string             `json:"note"`
	ExpectedTotal *models.Money      `json:"expected_total"`
}

// TransitionRequest 状态流转请求
type TransitionRequest struct {
	ExpectedStatus string `json:"expected_status"`
	TargetStatus   string `json:"target_status" binding:"required"`
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	CancelReasonID uint   `json:"cancel_reason_id" binding:"required"`
	ExpectedStatus string `json:"expected_status"`
}

// CancelOrderResponse 取消结果
type CancelOrderResponse struct {
	Order        *models.Order `json:"order"`
	RefundAmount models.Money  `json:"refund_amount"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
	}

	order, err := h.OrderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:        actor.UserID,
		Address:       req.Address,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Phone:         req.Phone,
		Note:          req.Note,
		Locale:        i18n.ResolveLocale(c),
		Items:         items,
		ExpectedTotal: req.ExpectedTotal,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 获取当前用户的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListOrders(c.Request.Context(), service.OrderListInput{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(c.Request.Context(), orderID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// TransitionOrder 推进订单状态
func (h *Handler) TransitionOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.TransitionStatus(c.Request.Context(), service.TransitionInput{
		OrderID:        orderID,
		ExpectedStatus: strings.TrimSpace(req.ExpectedStatus),
		TargetStatus:   strings.TrimSpace(req.TargetStatus),
		Actor:          actor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单并计算退款
func (h *Handler) CancelOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.OrderService.CancelOrder(c.Request.Context(), service.CancelOrderInput{
		OrderID:        orderID,
		CancelReasonID: req.CancelReasonID,
		ExpectedStatus: strings.TrimSpace(req.ExpectedStatus),
		Actor:          actor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, CancelOrderResponse{
		Order:        result.Order,
		RefundAmount: result.RefundAmount,
	})
}

// GetOrderStatusHistory 获取订单状态变更历史
func (h *Handler) GetOrderStatusHistory(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	changes, err := h.OrderService.GetStatusHistory(c.Request.Context(), orderID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, changes)
}
