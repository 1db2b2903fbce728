package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/queue"
	"github.com/handmade-market/internal/repository"

	"github.com/google/uuid"
)

const defaultPaymentExpire = 15 * time.Minute

// OrderService 订单服务
type OrderService struct {
	uow           *repository.UnitOfWork
	queueClient   *queue.Client
	refundGateway RefundGateway
	paymentExpire time.Duration
	now           func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(uow *repository.UnitOfWork, queueClient *queue.Client, refundGateway RefundGateway, paymentExpire time.Duration) *OrderService {
	if paymentExpire <= 0 {
		paymentExpire = defaultPaymentExpire
	}
	return &OrderService{
		uow:           uow,
		queueClient:   queueClient,
		refundGateway: refundGateway,
		paymentExpire: paymentExpire,
		now:           time.Now,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID        uint
	Address       string
	CustomerName  string
	CustomerEmail string
	Phone         string
	Note          string
	Locale        string
	Items         []CreateOrderItem
	// ExpectedTotal 客户端展示的总额，非空时必须与明细小计之和一致
	ExpectedTotal *models.Money
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	VariationID uint
	Quantity    int
}

// TransitionInput 状态变更输入
type TransitionInput struct {
	OrderID        uint
	ExpectedStatus string
	TargetStatus   string
	Actor          Actor
}

// CancelOrderInput 取消订单输入
type CancelOrderInput struct {
	OrderID        uint
	CancelReasonID uint
	ExpectedStatus string
	Actor          Actor
}

// CancelResult 取消结果
type CancelResult struct {
	Order        *models.Order
	RefundAmount models.Money
}

// CreateOrder 创建订单：校验明细、快照单价、预占库存并生成待支付记录
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrOrderUserRequired
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, ErrOrderAddressRequired
	}
	email := strings.TrimSpace(input.CustomerEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrOrderEmailInvalid
		}
	}
	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var created *models.Order
	var payment *models.Payment
	err = s.uow.Transaction(ctx, func(repos repository.Repos) error {
		details, err := buildOrderDetails(repos.Variations, items, now)
		if err != nil {
			return err
		}
		order := &models.Order{
			OrderNo:       generateOrderNo(now),
			UserID:        input.UserID,
			TotalPrice:    sumDetails(details),
			OrderDate:     now,
			Status:        constants.OrderStatusPending,
			Address:       address,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerEmail: email,
			Phone:         strings.TrimSpace(input.Phone),
			Note:          strings.TrimSpace(input.Note),
			Locale:        strings.TrimSpace(input.Locale),
			CreatedAt:     now,
			UpdatedAt:     now,
			Details:       details,
		}
		if input.ExpectedTotal != nil && !input.ExpectedTotal.Equal(order.TotalPrice) {
			return ErrOrderTotalMismatch
		}
		if err := validateOrderAggregate(order); err != nil {
			return err
		}
		if err := reserveStockByDetails(repos.Variations, details); err != nil {
			return err
		}
		if err := repos.Orders.Create(order); err != nil {
			return err
		}
		if err := repos.StatusChanges.Create(&models.StatusChange{
			OrderID:   order.ID,
			NewStatus: constants.OrderStatusPending,
			ChangedAt: now,
			ChangedBy: CustomerActor(input.UserID).Name(),
		}); err != nil {
			return err
		}
		payment = &models.Payment{
			OrderID:   order.ID,
			Amount:    order.TotalPrice,
			Status:    constants.PaymentStatusPending,
			ExpiresAt: now.Add(s.paymentExpire),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Payments.Create(payment); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, normalizeTxError(err)
	}

	logger.C(ctx).Infow("order_created",
		"order_id", created.ID,
		"order_no", created.OrderNo,
		"user_id", created.UserID,
		"total_price", created.TotalPrice.String(),
	)
	if s.queueClient != nil {
		if err := s.queueClient.EnqueuePaymentExpire(queue.PaymentExpirePayload{PaymentID: payment.ID}, payment.ExpiresAt.Sub(now)); err != nil {
			logger.C(ctx).Warnw("order_enqueue_payment_expire_failed",
				"order_id", created.ID,
				"payment_id", payment.ID,
				"error", err,
			)
		}
	}
	notifyOrderStatus(s.queueClient, created, constants.OrderStatusPending)
	return created, nil
}

// TransitionStatus 按状态图推进订单状态，并追加状态变更记录
func (s *OrderService) TransitionStatus(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == 0 {
		return nil, ErrOrderNotFound
	}
	target := strings.TrimSpace(input.TargetStatus)
	expected := strings.TrimSpace(input.ExpectedStatus)
	if expected != "" && !isKnownOrderStatus(expected) {
		return nil, ErrOrderStatusInvalid
	}
	// 取消必须经过 CancelOrder 记录原因并计算退款
	if target == constants.OrderStatusCanceled {
		return nil, ErrCancelRequiresReason
	}

	var updated *models.Order
	err := s.uow.Transaction(ctx, func(repos repository.Repos) error {
		order, err := applyTransition(repos, transitionRequest{
			OrderID:  input.OrderID,
			Expected: expected,
			Target:   target,
			Actor:    input.Actor,
			Now:      s.now(),
		})
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		err = normalizeTxError(err)
		logger.C(ctx).Infow("order_transition_rejected",
			"order_id", input.OrderID,
			"expected_status", expected,
			"target_status", target,
			"actor", input.Actor.Name(),
			"error", err,
		)
		return nil, err
	}

	logger.C(ctx).Infow("order_transitioned",
		"order_id", updated.ID,
		"status", updated.Status,
		"actor", input.Actor.Name(),
	)
	notifyOrderStatus(s.queueClient, updated, updated.Status)
	return updated, nil
}

// CancelOrder 取消订单：记录取消原因与退款金额，推进到 canceled 并下发退款指令
func (s *OrderService) CancelOrder(ctx context.Context, input CancelOrderInput) (*CancelResult, error) {
	if input.OrderID == 0 {
		return nil, ErrOrderNotFound
	}
	if input.CancelReasonID == 0 {
		return nil, ErrCancelReasonRequired
	}
	expected := strings.TrimSpace(input.ExpectedStatus)
	if expected != "" && !isKnownOrderStatus(expected) {
		return nil, ErrOrderStatusInvalid
	}

	var result CancelResult
	var instruction *RefundInstruction
	err := s.uow.Transaction(ctx, func(repos repository.Repos) error {
		instruction = nil
		order, err := repos.Orders.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if !input.Actor.CanAccess(order) {
			return ErrOrderAccessDenied
		}
		if expected != "" && order.Status != expected {
			return ErrStatusMismatch
		}
		if !isCancelableStatus(order.Status) {
			return ErrOrderCancelNotAllowed
		}
		reason, err := repos.CancelReasons.GetByID(input.CancelReasonID)
		if err != nil {
			return err
		}
		if reason == nil {
			return ErrCancelReasonNotFound
		}
		refund, err := CalculateRefund(order.TotalPrice, reason.RefundRate)
		if err != nil {
			return err
		}
		payment, err := repos.Payments.GetByOrderID(order.ID)
		if err != nil {
			return err
		}

		canceled, err := applyTransition(repos, transitionRequest{
			OrderID:  order.ID,
			Expected: order.Status,
			Target:   constants.OrderStatusCanceled,
			Actor:    input.Actor,
			Now:      s.now(),
			Updates: map[string]interface{}{
				"cancel_reason_id": reason.ID,
				"refund_amount":    refund,
			},
		})
		if err != nil {
			return err
		}
		result = CancelResult{Order: canceled, RefundAmount: refund}
		if payment != nil && payment.Status == constants.PaymentStatusCompleted && refund.IsPositive() {
			instruction = &RefundInstruction{
				OrderID:        order.ID,
				PaymentID:      payment.ID,
				CancelReasonID: reason.ID,
				Amount:         refund,
			}
		}
		return nil
	})
	if err != nil {
		err = normalizeTxError(err)
		logger.C(ctx).Infow("order_cancel_rejected",
			"order_id", input.OrderID,
			"cancel_reason_id", input.CancelReasonID,
			"actor", input.Actor.Name(),
			"error", err,
		)
		return nil, err
	}

	logger.C(ctx).Infow("order_canceled",
		"order_id", result.Order.ID,
		"cancel_reason_id", input.CancelReasonID,
		"refund_amount", result.RefundAmount.String(),
		"actor", input.Actor.Name(),
	)
	if instruction != nil && s.refundGateway != nil {
		if err := s.refundGateway.RequestRefund(ctx, *instruction); err != nil {
			logger.C(ctx).Errorw("order_refund_instruction_failed",
				"order_id", instruction.OrderID,
				"payment_id", instruction.PaymentID,
				"amount", instruction.Amount.String(),
				"error", err,
			)
		}
	}
	notifyOrderStatus(s.queueClient, result.Order, constants.OrderStatusCanceled)
	return &result, nil
}

// validateOrderAggregate 校验订单聚合的构造约束
func validateOrderAggregate(order *models.Order) error {
	if order == nil {
		return ErrOrderDetailsEmpty
	}
	if order.UserID == 0 {
		return ErrOrderUserRequired
	}
	if strings.TrimSpace(order.Address) == "" {
		return ErrOrderAddressRequired
	}
	if len(order.Details) == 0 {
		return ErrOrderDetailsEmpty
	}
	for _, detail := range order.Details {
		if detail.Quantity <= 0 || detail.VariationID == 0 || detail.UnitPrice.IsNegative() {
			return ErrOrderDetailInvalid
		}
	}
	if !sumDetails(order.Details).Equal(order.TotalPrice) {
		return ErrOrderTotalMismatch
	}
	return nil
}

func sumDetails(details []models.OrderDetail) models.Money {
	total := models.Money{}
	for _, detail := range details {
		total = total.Add(detail.LineTotal())
	}
	return total
}

// buildOrderDetails 读取规格并快照单价
func buildOrderDetails(variationRepo repository.ProductVariationRepository, items []CreateOrderItem, now time.Time) ([]models.OrderDetail, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariationID)
	}
	variations, err := variationRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.ProductVariation, len(variations))
	for _, variation := range variations {
		byID[variation.ID] = variation
	}

	details := make([]models.OrderDetail, 0, len(items))
	for _, item := range items {
		variation, ok := byID[item.VariationID]
		if !ok {
			return nil, ErrVariationNotFound
		}
		if !variation.IsActive || variation.Price.IsNegative() {
			return nil, ErrVariationUnavailable
		}
		details = append(details, models.OrderDetail{
			VariationID: variation.ID,
			Quantity:    item.Quantity,
			UnitPrice:   variation.Price,
			CreatedAt:   now,
		})
	}
	return details, nil
}

// mergeCreateOrderItems 合并重复规格的下单项，保持首次出现的顺序
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, ErrOrderDetailsEmpty
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[uint]int)
	for _, item := range items {
		if item.VariationID == 0 || item.Quantity <= 0 {
			return nil, ErrOrderDetailInvalid
		}
		if idx, ok := indexMap[item.VariationID]; ok {
			merged[idx].Quantity += item.Quantity
			continue
		}
		indexMap[item.VariationID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func generateOrderNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("HM%s%s", now.Format("20060102150405"), suffix)
}

// normalizeTxError 业务错误原样返回；重试后仍是瞬时错误时归为冲突
func normalizeTxError(err error) error {
	if err == nil {
		return nil
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return err
	}
	if repository.IsTransientError(err) {
		return ErrConcurrentUpdate
	}
	return err
}
