package queue

import (
	"encoding/json"
	"fmt"

	"github.com/handmade-market/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskOrderRefund 退款指令任务（交给支付网关执行）
	TaskOrderRefund = constants.TaskOrderRefund
	// TaskPaymentExpire 单笔支付过期任务
	TaskPaymentExpire = constants.TaskPaymentExpire
)

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
	Locale  string `json:"locale,omitempty"`
}

// OrderRefundPayload 退款指令任务载荷
type OrderRefundPayload struct {
	OrderID        uint   `json:"order_id"`
	PaymentID      uint   `json:"payment_id"`
	CancelReasonID uint   `json:"cancel_reason_id"`
	Amount         string `json:"amount"`
}

// PaymentExpirePayload 单笔支付过期任务载荷
type PaymentExpirePayload struct {
	PaymentID uint `json:"payment_id"`
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderStatusEmail, payload)
}

// NewOrderRefundTask 创建退款指令任务
func NewOrderRefundTask(payload OrderRefundPayload) (*asynq.Task, error) {
	if payload.OrderID == 0 {
		return nil, fmt.Errorf("refund task requires order id")
	}
	return newJSONTask(TaskOrderRefund, payload)
}

// NewPaymentExpireTask 创建单笔支付过期任务
func NewPaymentExpireTask(payload PaymentExpirePayload) (*asynq.Task, error) {
	if payload.PaymentID == 0 {
		return nil, fmt.Errorf("payment expire task requires payment id")
	}
	return newJSONTask(TaskPaymentExpire, payload)
}

func newJSONTask(typename string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, body), nil
}
