package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/handmade-market/internal/http/handlers/shared"
	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
)

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

// GetAdminOrders 获取订单列表 (Admin)
func (h *Handler) GetAdminOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	userID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64)

	orders, total, err := h.OrderService.ListOrders(c.Request.Context(), service.OrderListInput{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		UserID:   uint(userID),
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetAdminOrder 获取订单详情 (Admin)
func (h *Handler) GetAdminOrder(c *gin.Context) {
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

// TransitionAdminOrder 员工推进订单状态
func (h *Handler) TransitionAdminOrder(c *gin.Context) {
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

// CancelAdminOrder 员工取消订单
func (h *Handler) CancelAdminOrder(c *gin.Context) {
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
	response.Success(c, gin.H{
		"order":         result.Order,
		"refund_amount": result.RefundAmount,
	})
}

// GetAdminOrderStatusHistory 获取订单状态变更历史 (Admin)
func (h *Handler) GetAdminOrderStatusHistory(c *gin.Context) {
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

// GetAdminStatusChanges 分页浏览状态变更流水
func (h *Handler) GetAdminStatusChanges(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	orderID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("order_id")), 10, 64)

	changes, total, err := h.OrderService.ListStatusChanges(c.Request.Context(), uint(orderID), page, pageSize, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if changes == nil {
		changes = []models.StatusChange{}
	}
	response.SuccessWithPage(c, changes, response.BuildPagination(page, pageSize, total))
}

// DeleteAdminStatusChange 删除一条错误的状态变更记录
func (h *Handler) DeleteAdminStatusChange(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.OrderService.DeleteStatusChange(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
