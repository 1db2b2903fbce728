package service

import (
	"context"
	"strings"
	"time"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/queue"
	"github.com/handmade-market/internal/repository"

	"go.uber.org/zap"
)

// PaymentService 支付服务
type PaymentService struct {
	uow         *repository.UnitOfWork
	queueClient *queue.Client
	now         func() time.Time
}

// NewPaymentService 创建支付服务
func NewPaymentService(uow *repository.UnitOfWork, queueClient *queue.Client) *PaymentService {
	return &PaymentService{
		uow:         uow,
		queueClient: queueClient,
		now:         time.Now,
	}
}

func paymentLogger(ctx context.Context, kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.C(ctx)
	}
	return logger.C(ctx).With(kv...)
}

// GetByOrder 获取订单的支付记录
func (s *PaymentService) GetByOrder(ctx context.Context, orderID uint, actor Actor) (*models.Payment, error) {
	repos := s.uow.Repos(ctx)
	order, err := repos.Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !actor.CanAccess(order) {
		return nil, ErrOrderAccessDenied
	}
	payment, err := repos.Payments.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// Complete 确认支付成功：支付置为 completed，订单由系统推进到 processing 并扣减库存
func (s *PaymentService) Complete(ctx context.Context, paymentID uint, providerRef string) (*models.Payment, error) {
	if paymentID == 0 {
		return nil, ErrPaymentNotFound
	}
	log := paymentLogger(ctx,
		"payment_id", paymentID,
		"provider_ref", strings.TrimSpace(providerRef),
	)
	log.Infow("payment_complete_received")

	var completed *models.Payment
	var order *models.Order
	err := s.uow.Transaction(ctx, func(repos repository.Repos) error {
		now := s.now()
		payment, err := repos.Payments.GetByIDForUpdate(paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if payment.Status != constants.PaymentStatusPending {
			return ErrPaymentNotPending
		}
		if payment.IsExpiredAt(now) {
			return ErrPaymentExpired
		}
		if ref := strings.TrimSpace(providerRef); ref != "" {
			if _, err := repos.Payments.UpdateStatusIfCurrent(payment.ID, constants.PaymentStatusPending, constants.PaymentStatusPending, map[string]interface{}{
				"provider_ref": ref,
			}); err != nil {
				return err
			}
		}
		order, err = applyTransition(repos, transitionRequest{
			OrderID:  payment.OrderID,
			Expected: constants.OrderStatusPending,
			Target:   constants.OrderStatusProcessing,
			Actor:    SystemActor(),
			Now:      now,
		})
		if err != nil {
			return err
		}
		completed, err = repos.Payments.GetByID(payment.ID)
		return err
	})
	if err != nil {
		err = normalizeTxError(err)
		log.Warnw("payment_complete_rejected", "error", err)
		return nil, err
	}

	log.Infow("payment_completed", "order_id", completed.OrderID)
	notifyOrderStatus(s.queueClient, order, constants.OrderStatusProcessing)
	return completed, nil
}
