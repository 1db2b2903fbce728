package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/provider"
	"github.com/handmade-market/internal/queue"
	"github.com/handmade-market/internal/service"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskOrderRefund, c.handleOrderRefund)
	mux.HandleFunc(queue.TaskPaymentExpire, c.handlePaymentExpire)
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.EmailService == nil || !c.EmailService.Enabled() {
		logger.Debugw("worker_order_status_email_skip_disabled", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.UnitOfWork.Repos(ctx).Orders.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	receiverEmail := strings.TrimSpace(order.CustomerEmail)
	if receiverEmail == "" {
		logger.Debugw("worker_order_status_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	input := service.OrderStatusEmailInput{
		OrderNo: order.OrderNo,
		Status:  status,
		Amount:  order.TotalPrice,
	}
	if err := c.EmailService.SendOrderStatusEmail(ctx, receiverEmail, input, payload.Locale); err != nil {
		if isPermanentEmailError(err) {
			logger.Warnw("worker_order_status_email_dropped",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"status", status,
				"error", err,
			)
			return nil
		}
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiverEmail,
			"status", status,
			"error", err,
		)
		return err
	}
	return nil
}

// handleOrderRefund 把退款指令交给外部支付网关；当前网关对接为人工处理，这里校验并落日志
func (c *Consumer) handleOrderRefund(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_refund_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderRefundPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_refund_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
	if err != nil || payload.OrderID == 0 || !amount.IsPositive() {
		logger.Warnw("worker_order_refund_invalid_payload",
			"order_id", payload.OrderID,
			"amount", payload.Amount,
		)
		return fmt.Errorf("%w: invalid refund payload", asynq.SkipRetry)
	}
	logger.Infow("worker_order_refund_dispatched",
		"order_id", payload.OrderID,
		"payment_id", payload.PaymentID,
		"cancel_reason_id", payload.CancelReasonID,
		"amount", amount.StringFixed(2),
	)
	return nil
}

func (c *Consumer) handlePaymentExpire(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_expire_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.PaymentID == 0 {
		logger.Debugw("worker_payment_expire_skip_invalid_payload", "payment_id", payload.PaymentID)
		return nil
	}
	if c.PaymentReconciler == nil {
		logger.Warnw("worker_payment_expire_skip_reconciler_nil", "payment_id", payload.PaymentID)
		return nil
	}
	expired, err := c.PaymentReconciler.ExpirePayment(ctx, payload.PaymentID, c.now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			logger.Debugw("worker_payment_expire_skip_not_found", "payment_id", payload.PaymentID)
			return nil
		case errors.Is(err, service.ErrConflict):
			logger.Warnw("worker_payment_expire_conflict", "payment_id", payload.PaymentID, "error", err)
			return err
		default:
			logger.Warnw("worker_payment_expire_failed", "payment_id", payload.PaymentID, "error", err)
			return err
		}
	}
	logger.Debugw("worker_payment_expire_done", "payment_id", payload.PaymentID, "expired", expired)
	return nil
}

func isPermanentEmailError(err error) bool {
	return errors.Is(err, service.ErrEmailServiceDisabled) ||
		errors.Is(err, service.ErrEmailServiceNotConfigured) ||
		errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrEmailRecipientRejected)
}
