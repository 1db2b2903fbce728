package shared

import (
	"errors"

	"github.com/handmade-market/internal/http/response"
	"github.com/handmade-market/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// 具体错误优先匹配，类别兜底
var serviceErrorRules = []MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderDetailsEmpty, Code: response.CodeBadRequest, Key: "error.order_details_empty"},
	{Target: service.ErrOrderDetailInvalid, Code: response.CodeBadRequest, Key: "error.order_detail_invalid"},
	{Target: service.ErrOrderUserRequired, Code: response.CodeBadRequest, Key: "error.order_user_required"},
	{Target: service.ErrOrderAddressRequired, Code: response.CodeBadRequest, Key: "error.order_address_required"},
	{Target: service.ErrOrderTotalMismatch, Code: response.CodeBadRequest, Key: "error.order_total_mismatch"},
	{Target: service.ErrOrderEmailInvalid, Code: response.CodeBadRequest, Key: "error.order_email_invalid"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrVariationNotFound, Code: response.CodeNotFound, Key: "error.variation_not_found"},
	{Target: service.ErrVariationUnavailable, Code: response.CodeBadRequest, Key: "error.variation_unavailable"},
	{Target: service.ErrStockInsufficient, Code: response.CodeConflict, Key: "error.stock_insufficient"},
	{Target: service.ErrTransitionNotAllowed, Code: response.CodeUnprocessable, Key: "error.transition_not_allowed"},
	{Target: service.ErrCancelRequiresReason, Code: response.CodeUnprocessable, Key: "error.cancel_requires_reason"},
	{Target: service.ErrTransitionStaffOnly, Code: response.CodeForbidden, Key: "error.transition_staff_only"},
	{Target: service.ErrStatusMismatch, Code: response.CodeConflict, Key: "error.status_mismatch"},
	{Target: service.ErrConcurrentUpdate, Code: response.CodeConflict, Key: "error.concurrent_update"},
	{Target: service.ErrRefundNotComputed, Code: response.CodeUnprocessable, Key: "error.refund_not_computed"},
	{Target: service.ErrOrderCancelNotAllowed, Code: response.CodeUnprocessable, Key: "error.order_cancel_not_allowed"},
	{Target: service.ErrOrderAccessDenied, Code: response.CodeForbidden, Key: "error.order_access_denied"},
	{Target: service.ErrStaffOnly, Code: response.CodeForbidden, Key: "error.staff_only"},
	{Target: service.ErrStatusChangeNotFound, Code: response.CodeNotFound, Key: "error.status_change_not_found"},
	{Target: service.ErrCancelReasonRequired, Code: response.CodeBadRequest, Key: "error.cancel_reason_required"},
	{Target: service.ErrCancelReasonNotFound, Code: response.CodeNotFound, Key: "error.cancel_reason_not_found"},
	{Target: service.ErrCancelReasonDescRequired, Code: response.CodeBadRequest, Key: "error.cancel_reason_desc_required"},
	{Target: service.ErrCancelReasonDescTooLong, Code: response.CodeBadRequest, Key: "error.cancel_reason_desc_too_long"},
	{Target: service.ErrRefundRateInvalid, Code: response.CodeBadRequest, Key: "error.refund_rate_invalid"},
	{Target: service.ErrPaginationInvalid, Code: response.CodeBadRequest, Key: "error.pagination_invalid"},
	{Target: service.ErrPaymentNotFound, Code: response.CodeNotFound, Key: "error.payment_not_found"},
	{Target: service.ErrPaymentNotPending, Code: response.CodeUnprocessable, Key: "error.payment_not_pending"},
	{Target: service.ErrPaymentExpired, Code: response.CodeUnprocessable, Key: "error.payment_expired"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.conflict"},
	{Target: service.ErrInvalidTransition, Code: response.CodeUnprocessable, Key: "error.transition_not_allowed"},
	{Target: service.ErrInvalidState, Code: response.CodeUnprocessable, Key: "error.conflict"},
}

// RespondServiceError 按业务错误类别返回响应；未归类的错误按内部错误处理并记录日志
func RespondServiceError(c *gin.Context, err error) {
	RespondMappedError(c, err, serviceErrorRules, response.CodeInternal, "error.internal")
}

// RespondMappedError 依次匹配规则，命中即返回对应错误码
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}
