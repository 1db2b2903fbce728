package admin

import (
	"strings"
	"time"

	"github.com/handmade-market/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CompletePaymentRequest 确认到账请求
type CompletePaymentRequest struct {
	ProviderRef string `json:"provider_ref"`
}

// CompletePayment 财务确认支付到账，订单进入处理中
func (h *Handler) CompletePayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	payment, err := h.PaymentService.Complete(c.Request.Context(), id, strings.TrimSpace(req.ProviderRef))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}

// RunReconciler 手动触发一轮支付过期对账
func (h *Handler) RunReconciler(c *gin.Context) {
	report, err := h.PaymentReconciler.RunOnce(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}
