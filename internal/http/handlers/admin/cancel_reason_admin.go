package admin

import (
	"strconv"

	handlershared "github.com/handmade-market/internal/http/handlers/shared"
	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CancelReasonRequest 取消原因请求
type CancelReasonRequest struct {
	Description string          `json:"description" binding:"required"`
	RefundRate  decimal.Decimal `json:"refund_rate"`
}

// GetAdminCancelReasons 获取取消原因列表（含已删除，分页）
func (h *Handler) GetAdminCancelReasons(c *gin.Context) {
	if includeDeleted, _ := strconv.ParseBool(c.DefaultQuery("include_deleted", "false")); includeDeleted {
		reasons, err := h.CancelReasonService.List(c.Request.Context(), true)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.Success(c, reasons)
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	reasons, total, err := h.CancelReasonService.ListPage(page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, reasons, response.BuildPagination(page, pageSize, total))
}

// GetAdminCancelReason 获取取消原因详情
func (h *Handler) GetAdminCancelReason(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reason, err := h.CancelReasonService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reason)
}

// CreateCancelReason 新增取消原因
func (h *Handler) CreateCancelReason(c *gin.Context) {
	var req CancelReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	reason, err := h.CancelReasonService.Create(c.Request.Context(), service.CancelReasonInput{
		Description: req.Description,
		RefundRate:  req.RefundRate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reason)
}

// UpdateCancelReason 更新取消原因
func (h *Handler) UpdateCancelReason(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req CancelReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	reason, err := h.CancelReasonService.Update(c.Request.Context(), id, service.CancelReasonInput{
		Description: req.Description,
		RefundRate:  req.RefundRate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reason)
}

// DeleteCancelReason 软删除取消原因
func (h *Handler) DeleteCancelReason(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.CancelReasonService.Delete(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
