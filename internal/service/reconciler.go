package service

import (
	"context"
	"time"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/queue"
	"github.com/handmade-market/internal/repository"
)

const defaultReconcileBatchSize = 100

// ReconcileReport 一轮对账的统计
type ReconcileReport struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// PaymentReconciler 支付过期对账：超时未支付的记录逐条过期并取消订单
type PaymentReconciler struct {
	uow         *repository.UnitOfWork
	queueClient *queue.Client
	batchSize   int
}

// NewPaymentReconciler 创建支付对账器
func NewPaymentReconciler(uow *repository.UnitOfWork, queueClient *queue.Client, batchSize int) *PaymentReconciler {
	if batchSize <= 0 {
		batchSize = defaultReconcileBatchSize
	}
	return &PaymentReconciler{
		uow:         uow,
		queueClient: queueClient,
		batchSize:   batchSize,
	}
}

// RunOnce 扫描一批已超时的待支付记录；单条失败只记录日志，下一轮自然重试
func (r *PaymentReconciler) RunOnce(ctx context.Context, now time.Time) (ReconcileReport, error) {
	report := ReconcileReport{}
	payments, err := r.uow.Repos(ctx).Payments.ListExpiredPending(now, r.batchSize)
	if err != nil {
		logger.C(ctx).Errorw("reconciler_scan_failed", "error", err)
		return report, err
	}
	report.Scanned = len(payments)
	for _, payment := range payments {
		if ctx.Err() != nil {
			break
		}
		expired, err := r.ExpirePayment(ctx, payment.ID, now)
		switch {
		case err != nil:
			report.Failed++
			logger.C(ctx).Warnw("reconciler_payment_expire_failed",
				"payment_id", payment.ID,
				"order_id", payment.OrderID,
				"error", err,
			)
		case expired:
			report.Expired++
		default:
			report.Skipped++
		}
	}
	if report.Scanned > 0 {
		logger.C(ctx).Infow("reconciler_run_finished",
			"scanned", report.Scanned,
			"expired", report.Expired,
			"skipped", report.Skipped,
			"failed", report.Failed,
		)
	}
	return report, ctx.Err()
}

// ExpirePayment 在独立事务内过期单笔支付并取消对应订单；已处理的记录直接返回 false
func (r *PaymentReconciler) ExpirePayment(ctx context.Context, paymentID uint, now time.Time) (bool, error) {
	var canceled *models.Order
	expired := false
	err := r.uow.Transaction(ctx, func(repos repository.Repos) error {
		canceled = nil
		expired = false
		payment, err := repos.Payments.GetByIDForUpdate(paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if payment.Status != constants.PaymentStatusPending || !payment.IsExpiredAt(now) {
			return nil
		}
		affected, err := repos.Payments.UpdateStatusIfCurrent(payment.ID, constants.PaymentStatusPending, constants.PaymentStatusExpired, map[string]interface{}{
			"expired_at": now,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		expired = true

		order, err := repos.Orders.GetByIDForUpdate(payment.OrderID)
		if err != nil {
			return err
		}
		if order == nil || order.Status != constants.OrderStatusPending {
			logger.C(ctx).Warnw("reconciler_order_not_pending",
				"payment_id", payment.ID,
				"order_id", payment.OrderID,
			)
			return nil
		}
		canceled, err = applyTransition(repos, transitionRequest{
			OrderID:  order.ID,
			Expected: constants.OrderStatusPending,
			Target:   constants.OrderStatusCanceled,
			Actor:    SystemActor(),
			Now:      now,
		})
		return err
	})
	if err != nil {
		return false, normalizeTxError(err)
	}
	if canceled != nil {
		logger.C(ctx).Infow("reconciler_order_canceled",
			"payment_id", paymentID,
			"order_id", canceled.ID,
		)
		notifyOrderStatus(r.queueClient, canceled, constants.OrderStatusCanceled)
	}
	return expired, nil
}
