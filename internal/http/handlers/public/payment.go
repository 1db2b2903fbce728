package public

import (
	"github.com/handmade-market/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetOrderPayment 获取订单的支付记录
func (h *Handler) GetOrderPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	payment, err := h.PaymentService.GetByOrder(c.Request.Context(), orderID, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}
