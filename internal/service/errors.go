package service

import "errors"

// 错误分类：每个业务错误都归属其中一类，调用方可用 errors.Is 按类别判断
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidState      = errors.New("invalid state")
)

// BizError 归类的业务错误
type BizError struct {
	category error
	msg      string
}

func newBizError(category error, msg string) *BizError {
	return &BizError{category: category, msg: msg}
}

// Error 实现 error
func (e *BizError) Error() string {
	return e.msg
}

// Unwrap 返回错误类别
func (e *BizError) Unwrap() error {
	return e.category
}

// 订单
var (
	ErrOrderNotFound            = newBizError(ErrNotFound, "order not found")
	ErrOrderDetailsEmpty        = newBizError(ErrValidation, "order must contain at least one detail")
	ErrOrderDetailInvalid       = newBizError(ErrValidation, "order detail quantity must be positive")
	ErrOrderUserRequired        = newBizError(ErrValidation, "order requires a user")
	ErrOrderAddressRequired     = newBizError(ErrValidation, "order requires a delivery address")
	ErrOrderTotalMismatch       = newBizError(ErrValidation, "order total does not match the sum of its details")
	ErrOrderEmailInvalid        = newBizError(ErrValidation, "customer email is invalid")
	ErrOrderStatusInvalid       = newBizError(ErrValidation, "unknown order status")
	ErrVariationNotFound        = newBizError(ErrNotFound, "product variation not found")
	ErrVariationUnavailable     = newBizError(ErrValidation, "product variation is not available")
	ErrStockInsufficient        = newBizError(ErrConflict, "insufficient stock")
	ErrTransitionNotAllowed     = newBizError(ErrInvalidTransition, "status transition not allowed")
	ErrCancelRequiresReason     = newBizError(ErrInvalidTransition, "orders are canceled through the cancel operation with a reason")
	ErrTransitionStaffOnly      = newBizError(ErrForbidden, "only staff may move an order to this status")
	ErrStatusMismatch           = newBizError(ErrConflict, "order status changed concurrently")
	ErrConcurrentUpdate         = newBizError(ErrConflict, "order is being updated by another request")
	ErrRefundNotComputed        = newBizError(ErrInvalidState, "refund amount has not been computed")
	ErrOrderCancelNotAllowed    = newBizError(ErrInvalidState, "order can only be canceled while pending or processing")
	ErrOrderAccessDenied        = newBizError(ErrForbidden, "actor may not act on this order")
	ErrStaffOnly                = newBizError(ErrForbidden, "operation requires staff")
	ErrStatusChangeNotFound     = newBizError(ErrNotFound, "status change not found")
	ErrCancelReasonRequired     = newBizError(ErrValidation, "cancel reason is required")
	ErrCancelReasonNotFound     = newBizError(ErrNotFound, "cancel reason not found")
	ErrCancelReasonDescRequired = newBizError(ErrValidation, "cancel reason description is required")
	ErrCancelReasonDescTooLong  = newBizError(ErrValidation, "cancel reason description is too long")
	ErrRefundRateInvalid        = newBizError(ErrValidation, "refund rate must be between 0 and 1")
	ErrPaginationInvalid        = newBizError(ErrValidation, "page and page size must be positive")
)

// 支付
var (
	ErrPaymentNotFound   = newBizError(ErrNotFound, "payment not found")
	ErrPaymentNotPending = newBizError(ErrInvalidState, "payment is not pending")
	ErrPaymentExpired    = newBizError(ErrInvalidState, "payment has expired")
)

// 邮件
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

// 认证
var (
	ErrInvalidCredentials = newBizError(ErrForbidden, "invalid credentials")
)
