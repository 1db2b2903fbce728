package public

import (
	"github.com/handmade-market/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListCancelReasons 获取可选的取消原因
func (h *Handler) ListCancelReasons(c *gin.Context) {
	reasons, err := h.CancelReasonService.List(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reasons)
}
