package service

import (
	"strings"

	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/queue"
)

// enqueueOrderStatusEmailTaskIfEligible 订单留有通知邮箱时入队状态邮件任务。
// 返回值 skipped 表示没有可通知的邮箱。
func enqueueOrderStatusEmailTaskIfEligible(queueClient *queue.Client, order *models.Order, status string) (skipped bool, err error) {
	if queueClient == nil || order == nil || order.ID == 0 {
		return true, nil
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		return true, nil
	}
	if err := queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  strings.TrimSpace(status),
		Locale:  order.Locale,
	}); err != nil {
		return false, err
	}
	return false, nil
}

// notifyOrderStatus 事务提交后的状态通知，失败只记录日志
func notifyOrderStatus(queueClient *queue.Client, order *models.Order, status string) {
	if _, err := enqueueOrderStatusEmailTaskIfEligible(queueClient, order, status); err != nil {
		logger.Warnw("order_enqueue_status_email_failed",
			"order_id", order.ID,
			"status", status,
			"error", err,
		)
	}
}
