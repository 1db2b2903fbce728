package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type refundGatewayStub struct {
	mu           sync.Mutex
	instructions []RefundInstruction
}

func (s *refundGatewayStub) RequestRefund(_ context.Context, instruction RefundInstruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructions = append(s.instructions, instruction)
	return nil
}

type orderTestEnv struct {
	db       *gorm.DB
	uow      *repository.UnitOfWork
	orders   *OrderService
	payments *PaymentService
	refunds  *refundGatewayStub
	now      time.Time
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&models.ProductVariation{},
		&models.CancelReason{},
		&models.Order{},
		&models.OrderDetail{},
		&models.StatusChange{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	uow := repository.NewUnitOfWork(db, 5*time.Second)
	refunds := &refundGatewayStub{}
	orders := NewOrderService(uow, nil, refunds, 15*time.Minute)
	orders.now = clock
	payments := NewPaymentService(uow, nil)
	payments.now = clock
	return &orderTestEnv{
		db:       db,
		uow:      uow,
		orders:   orders,
		payments: payments,
		refunds:  refunds,
		now:      now,
	}
}

func (e *orderTestEnv) createVariation(t *testing.T, price string, stock int) *models.ProductVariation {
	t.Helper()
	variation := &models.ProductVariation{
		ProductID:  1,
		Name:       "glazed mug " + price,
		Price:      models.MustMoney(price),
		StockTotal: stock,
		IsActive:   true,
	}
	if err := e.db.Create(variation).Error; err != nil {
		t.Fatalf("create variation failed: %v", err)
	}
	return variation
}

func (e *orderTestEnv) createReason(t *testing.T, description, rate string) *models.CancelReason {
	t.Helper()
	reason := &models.CancelReason{
		Description: description,
		RefundRate:  decimal.RequireFromString(rate),
	}
	if err := e.db.Create(reason).Error; err != nil {
		t.Fatalf("create cancel reason failed: %v", err)
	}
	return reason
}

func (e *orderTestEnv) createOrder(t *testing.T, userID uint, items ...CreateOrderItem) *models.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  userID,
		Address: "12 Kiln Street",
		Items:   items,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (e *orderTestEnv) history(t *testing.T, orderID uint) []models.StatusChange {
	t.Helper()
	changes, err := e.orders.GetStatusHistory(context.Background(), orderID, StaffActor(1))
	if err != nil {
		t.Fatalf("get status history failed: %v", err)
	}
	return changes
}

func (e *orderTestEnv) reloadVariation(t *testing.T, id uint) models.ProductVariation {
	t.Helper()
	var variation models.ProductVariation
	if err := e.db.First(&variation, id).Error; err != nil {
		t.Fatalf("reload variation failed: %v", err)
	}
	return variation
}

func (e *orderTestEnv) transition(orderID uint, expected, target string, actor Actor) (*models.Order, error) {
	return e.orders.TransitionStatus(context.Background(), TransitionInput{
		OrderID:        orderID,
		ExpectedStatus: expected,
		TargetStatus:   target,
		Actor:          actor,
	})
}

func TestCreateOrderSnapshotsPricesAndReservesStock(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "12.50", 5)
	bowl := env.createVariation(t, "5.00", 3)

	order := env.createOrder(t, 7,
		CreateOrderItem{VariationID: mug.ID, Quantity: 1},
		CreateOrderItem{VariationID: bowl.ID, Quantity: 1},
		CreateOrderItem{VariationID: mug.ID, Quantity: 1},
	)
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if !order.TotalPrice.Equal(models.MustMoney("30.00")) {
		t.Fatalf("expected total 30.00, got %s", order.TotalPrice.String())
	}
	if len(order.Details) != 2 {
		t.Fatalf("expected merged details, got %d", len(order.Details))
	}
	if !sumDetails(order.Details).Equal(order.TotalPrice) {
		t.Fatalf("total must equal the sum of line totals")
	}

	history := env.history(t, order.ID)
	if len(history) != 1 || history[0].OldStatus != "" || history[0].NewStatus != constants.OrderStatusPending {
		t.Fatalf("unexpected initial history: %+v", history)
	}
	if got := env.reloadVariation(t, mug.ID).StockLocked; got != 2 {
		t.Fatalf("expected 2 mugs locked, got %d", got)
	}

	payment, err := env.payments.GetByOrder(context.Background(), order.ID, CustomerActor(7))
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusPending || !payment.Amount.Equal(order.TotalPrice) {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	if !payment.ExpiresAt.Equal(env.now.Add(15 * time.Minute)) {
		t.Fatalf("unexpected expires_at: %s", payment.ExpiresAt)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "10.00", 1)
	wrongTotal := models.MustMoney("9.99")

	tests := []struct {
		name     string
		input    CreateOrderInput
		want     error
		category error
	}{
		{
			name:     "no_details",
			input:    CreateOrderInput{UserID: 1, Address: "a"},
			want:     ErrOrderDetailsEmpty,
			category: ErrValidation,
		},
		{
			name:     "no_address",
			input:    CreateOrderInput{UserID: 1, Items: []CreateOrderItem{{VariationID: mug.ID, Quantity: 1}}},
			want:     ErrOrderAddressRequired,
			category: ErrValidation,
		},
		{
			name:     "zero_quantity",
			input:    CreateOrderInput{UserID: 1, Address: "a", Items: []CreateOrderItem{{VariationID: mug.ID, Quantity: 0}}},
			want:     ErrOrderDetailInvalid,
			category: ErrValidation,
		},
		{
			name:     "total_mismatch",
			input:    CreateOrderInput{UserID: 1, Address: "a", Items: []CreateOrderItem{{VariationID: mug.ID, Quantity: 1}}, ExpectedTotal: &wrongTotal},
			want:     ErrOrderTotalMismatch,
			category: ErrValidation,
		},
		{
			name:     "unknown_variation",
			input:    CreateOrderInput{UserID: 1, Address: "a", Items: []CreateOrderItem{{VariationID: 999, Quantity: 1}}},
			want:     ErrVariationNotFound,
			category: ErrNotFound,
		},
		{
			name:     "insufficient_stock",
			input:    CreateOrderInput{UserID: 1, Address: "a", Items: []CreateOrderItem{{VariationID: mug.ID, Quantity: 2}}},
			want:     ErrStockInsufficient,
			category: ErrConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.CreateOrder(context.Background(), tt.input)
			if !errors.Is(err, tt.want) || !errors.Is(err, tt.category) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected orders must not be persisted, got %d", count)
	}
	if got := env.reloadVariation(t, mug.ID).StockLocked; got != 0 {
		t.Fatalf("rejected orders must not lock stock, got %d", got)
	}
}

func TestValidateOrderAggregate(t *testing.T) {
	order := &models.Order{
		UserID:     1,
		Address:    "12 Kiln Street",
		TotalPrice: models.MustMoney("25.00"),
		Details: []models.OrderDetail{
			{VariationID: 1, Quantity: 2, UnitPrice: models.MustMoney("10.00")},
			{VariationID: 2, Quantity: 1, UnitPrice: models.MustMoney("5.00")},
		},
	}
	if err := validateOrderAggregate(order); err != nil {
		t.Fatalf("expected valid order, got %v", err)
	}
	order.TotalPrice = models.MustMoney("24.99")
	if err := validateOrderAggregate(order); !errors.Is(err, ErrOrderTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", err)
	}
	order.UserID = 0
	if err := validateOrderAggregate(order); !errors.Is(err, ErrOrderUserRequired) {
		t.Fatalf("expected user required, got %v", err)
	}
}

func TestMergeCreateOrderItems(t *testing.T) {
	merged, err := mergeCreateOrderItems([]CreateOrderItem{
		{VariationID: 2, Quantity: 1},
		{VariationID: 1, Quantity: 2},
		{VariationID: 2, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("mergeCreateOrderItems error: %v", err)
	}
	if len(merged) != 2 || merged[0].VariationID != 2 || merged[0].Quantity != 4 || merged[1].Quantity != 2 {
		t.Fatalf("unexpected merged items: %+v", merged)
	}
	if _, err := mergeCreateOrderItems([]CreateOrderItem{{VariationID: 1, Quantity: -1}}); !errors.Is(err, ErrOrderDetailInvalid) {
		t.Fatalf("expected invalid detail, got %v", err)
	}
}

func TestIsTransitionAllowed(t *testing.T) {
	allowed := [][2]string{
		{constants.OrderStatusPending, constants.OrderStatusProcessing},
		{constants.OrderStatusPending, constants.OrderStatusCanceled},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped},
		{constants.OrderStatusProcessing, constants.OrderStatusCanceled},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered},
		{constants.OrderStatusCanceled, constants.OrderStatusRefunded},
	}
	for _, pair := range allowed {
		if !isTransitionAllowed(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}
	denied := [][2]string{
		{constants.OrderStatusDelivered, constants.OrderStatusProcessing},
		{constants.OrderStatusShipped, constants.OrderStatusCanceled},
		{constants.OrderStatusRefunded, constants.OrderStatusPending},
		{constants.OrderStatusPending, constants.OrderStatusShipped},
		{constants.OrderStatusPending, constants.OrderStatusPending},
	}
	for _, pair := range denied {
		if isTransitionAllowed(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}

func TestTransitionStatusHappyPathRecordsHistory(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "20.00", 4)
	order := env.createOrder(t, 3, CreateOrderItem{VariationID: mug.ID, Quantity: 2})

	steps := []struct {
		expected string
		target   string
	}{
		{constants.OrderStatusPending, constants.OrderStatusProcessing},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped},
		{"", constants.OrderStatusDelivered},
	}
	for i, step := range steps {
		updated, err := env.transition(order.ID, step.expected, step.target, StaffActor(9))
		if err != nil {
			t.Fatalf("step %d transition failed: %v", i, err)
		}
		if updated.Status != step.target {
			t.Fatalf("step %d expected %s, got %s", i, step.target, updated.Status)
		}
		if got := len(env.history(t, order.ID)); got != i+2 {
			t.Fatalf("step %d expected %d history rows, got %d", i, i+2, got)
		}
	}

	history := env.history(t, order.ID)
	wantPath := []string{"", constants.OrderStatusPending, constants.OrderStatusProcessing, constants.OrderStatusShipped, constants.OrderStatusDelivered}
	for i, change := range history {
		if change.OldStatus != wantPath[i] || change.NewStatus != wantPath[i+1] {
			t.Fatalf("unexpected history row %d: %+v", i, change)
		}
		if i > 0 && change.ChangedBy != "staff:9" {
			t.Fatalf("unexpected changed_by: %s", change.ChangedBy)
		}
	}

	variation := env.reloadVariation(t, mug.ID)
	if variation.StockLocked != 0 || variation.StockSold != 2 {
		t.Fatalf("expected stock consumed, got locked=%d sold=%d", variation.StockLocked, variation.StockSold)
	}
	payment, err := env.payments.GetByOrder(context.Background(), order.ID, StaffActor(9))
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusCompleted || payment.PaidAt == nil {
		t.Fatalf("expected completed payment, got %+v", payment)
	}
}

func TestTransitionStatusRejectsTransitionOutsideGraph(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "20.00", 1)
	order := env.createOrder(t, 3, CreateOrderItem{VariationID: mug.ID, Quantity: 1})
	for _, target := range []string{constants.OrderStatusProcessing, constants.OrderStatusShipped, constants.OrderStatusDelivered} {
		if _, err := env.transition(order.ID, "", target, StaffActor(1)); err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
	}
	before := len(env.history(t, order.ID))

	_, err := env.transition(order.ID, constants.OrderStatusDelivered, constants.OrderStatusProcessing, StaffActor(1))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	current, err := env.orders.GetOrder(context.Background(), order.ID, StaffActor(1))
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if current.Status != constants.OrderStatusDelivered {
		t.Fatalf("order must stay delivered, got %s", current.Status)
	}
	if after := len(env.history(t, order.ID)); after != before {
		t.Fatalf("history must not change, before=%d after=%d", before, after)
	}

	if _, err := env.transition(order.ID, "", "archived", StaffActor(1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestTransitionStatusAccessControl(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "20.00", 2)
	order := env.createOrder(t, 3, CreateOrderItem{VariationID: mug.ID, Quantity: 1})

	if _, err := env.transition(order.ID, "", constants.OrderStatusProcessing, CustomerActor(4)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, err := env.orders.GetOrder(context.Background(), order.ID, CustomerActor(4)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden read for non-owner, got %v", err)
	}
	if _, err := env.transition(999, "", constants.OrderStatusProcessing, StaffActor(1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := env.transition(order.ID, constants.OrderStatusProcessing, constants.OrderStatusShipped, StaffActor(1)); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on stale expected status, got %v", err)
	}

	// 顾客不能自行确认收款
	_, err := env.transition(order.ID, constants.OrderStatusPending, constants.OrderStatusProcessing, CustomerActor(3))
	if !errors.Is(err, ErrTransitionStaffOnly) || !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected staff only for owner confirming payment, got %v", err)
	}
	payment, err := env.payments.GetByOrder(context.Background(), order.ID, SystemActor())
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusPending || payment.PaidAt != nil {
		t.Fatalf("payment must stay pending, got %+v", payment)
	}
	if variation := env.reloadVariation(t, mug.ID); variation.StockLocked != 1 || variation.StockSold != 0 {
		t.Fatalf("stock must stay reserved, got locked=%d sold=%d", variation.StockLocked, variation.StockSold)
	}
	if history := env.history(t, order.ID); len(history) != 1 {
		t.Fatalf("rejected transition must not append history, got %d rows", len(history))
	}

	for _, target := range []string{constants.OrderStatusProcessing, constants.OrderStatusShipped} {
		if _, err := env.transition(order.ID, "", target, StaffActor(1)); err != nil {
			t.Fatalf("staff transition to %s failed: %v", target, err)
		}
	}
	delivered, err := env.transition(order.ID, constants.OrderStatusShipped, constants.OrderStatusDelivered, CustomerActor(3))
	if err != nil {
		t.Fatalf("owner confirming delivery failed: %v", err)
	}
	if delivered.Status != constants.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", delivered.Status)
	}
}

func TestTransitionStatusRejectsCancel(t *testing.T) {
	env := newOrderTestEnv(t)
	vase := env.createVariation(t, "100.00", 2)
	reason := env.createReason(t, "Glaze cracked", "1")
	order := env.createOrder(t, 3, CreateOrderItem{VariationID: vase.ID, Quantity: 1})

	for _, actor := range []Actor{CustomerActor(3), StaffActor(1)} {
		_, err := env.transition(order.ID, constants.OrderStatusPending, constants.OrderStatusCanceled, actor)
		if !errors.Is(err, ErrCancelRequiresReason) || !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected cancel to require a reason for %s, got %v", actor.Name(), err)
		}
	}
	if _, err := env.transition(order.ID, constants.OrderStatusPending, constants.OrderStatusProcessing, StaffActor(1)); err != nil {
		t.Fatalf("mark processing failed: %v", err)
	}
	if _, err := env.transition(order.ID, constants.OrderStatusProcessing, constants.OrderStatusCanceled, CustomerActor(3)); !errors.Is(err, ErrCancelRequiresReason) {
		t.Fatalf("expected cancel to require a reason, got %v", err)
	}
	if history := env.history(t, order.ID); len(history) != 2 {
		t.Fatalf("rejected cancels must not append history, got %d rows", len(history))
	}

	result, err := env.orders.CancelOrder(context.Background(), CancelOrderInput{
		OrderID:        order.ID,
		CancelReasonID: reason.ID,
		Actor:          CustomerActor(3),
	})
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if result.Order.CancelReasonID == nil || *result.Order.CancelReasonID != reason.ID || result.Order.RefundAmount == nil {
		t.Fatalf("cancel must record reason and refund: %+v", result.Order)
	}
	refunded, err := env.transition(order.ID, constants.OrderStatusCanceled, constants.OrderStatusRefunded, StaffActor(1))
	if err != nil {
		t.Fatalf("refund after cancel failed: %v", err)
	}
	if refunded.Status != constants.OrderStatusRefunded {
		t.Fatalf("expected refunded, got %s", refunded.Status)
	}
}

func TestTransitionToRefundedRequiresRefundAmount(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "20.00", 1)
	order := env.createOrder(t, 3, CreateOrderItem{VariationID: mug.ID, Quantity: 1})
	payment, err := env.payments.GetByOrder(context.Background(), order.ID, SystemActor())
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	// 过期取消不计算退款
	reconciler := NewPaymentReconciler(env.uow, nil, 10)
	if expired, err := reconciler.ExpirePayment(context.Background(), payment.ID, env.now.Add(16*time.Minute)); err != nil || !expired {
		t.Fatalf("expire payment failed: expired=%v err=%v", expired, err)
	}
	if _, err := env.transition(order.ID, constants.OrderStatusCanceled, constants.OrderStatusRefunded, CustomerActor(3)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected refund to be staff only, got %v", err)
	}
	_, err = env.transition(order.ID, constants.OrderStatusCanceled, constants.OrderStatusRefunded, StaffActor(1))
	if !errors.Is(err, ErrRefundNotComputed) || !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected refund not computed, got %v", err)
	}
}

func TestCancelOrderComputesRefundAndRequestsIt(t *testing.T) {
	env := newOrderTestEnv(t)
	vase := env.createVariation(t, "100.00", 2)
	reason := env.createReason(t, "Changed my mind", "0.5")
	order := env.createOrder(t, 5, CreateOrderItem{VariationID: vase.ID, Quantity: 1})
	if _, err := env.transition(order.ID, constants.OrderStatusPending, constants.OrderStatusProcessing, StaffActor(1)); err != nil {
		t.Fatalf("mark processing failed: %v", err)
	}

	result, err := env.orders.CancelOrder(context.Background(), CancelOrderInput{
		OrderID:        order.ID,
		CancelReasonID: reason.ID,
		Actor:          CustomerActor(5),
	})
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if !result.RefundAmount.Equal(models.MustMoney("50.00")) {
		t.Fatalf("expected refund 50.00, got %s", result.RefundAmount.String())
	}
	if result.Order.Status != constants.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", result.Order.Status)
	}
	if result.Order.RefundAmount == nil || !result.Order.RefundAmount.Equal(result.RefundAmount) {
		t.Fatalf("refund amount must be stored on the order: %+v", result.Order.RefundAmount)
	}
	if result.Order.CancelReasonID == nil || *result.Order.CancelReasonID != reason.ID {
		t.Fatalf("cancel reason must be stored on the order")
	}
	if len(env.refunds.instructions) != 1 || !env.refunds.instructions[0].Amount.Equal(models.MustMoney("50.00")) {
		t.Fatalf("expected one refund instruction, got %+v", env.refunds.instructions)
	}
	variation := env.reloadVariation(t, vase.ID)
	if variation.StockSold != 0 || variation.StockLocked != 0 {
		t.Fatalf("expected sold stock returned, got %+v", variation)
	}

	if _, err := env.transition(order.ID, constants.OrderStatusCanceled, constants.OrderStatusRefunded, StaffActor(1)); err != nil {
		t.Fatalf("refunded transition failed: %v", err)
	}
	history := env.history(t, order.ID)
	if last := history[len(history)-1]; last.NewStatus != constants.OrderStatusRefunded {
		t.Fatalf("unexpected last history row: %+v", last)
	}
}

func TestCancelOrderPendingSkipsRefundInstruction(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "10.01", 1)
	reason := env.createReason(t, "Ordered by mistake", "0.5")
	order := env.createOrder(t, 5, CreateOrderItem{VariationID: mug.ID, Quantity: 1})

	result, err := env.orders.CancelOrder(context.Background(), CancelOrderInput{
		OrderID:        order.ID,
		CancelReasonID: reason.ID,
		Actor:          CustomerActor(5),
	})
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if !result.RefundAmount.Equal(models.MustMoney("5.01")) {
		t.Fatalf("expected half-up rounding to 5.01, got %s", result.RefundAmount.String())
	}
	if len(env.refunds.instructions) != 0 {
		t.Fatalf("unpaid orders must not request refunds")
	}
	payment, err := env.payments.GetByOrder(context.Background(), order.ID, CustomerActor(5))
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusCanceled {
		t.Fatalf("expected payment canceled, got %s", payment.Status)
	}
	if got := env.reloadVariation(t, mug.ID).StockLocked; got != 0 {
		t.Fatalf("expected stock released, got %d", got)
	}
}

func TestCancelOrderPreconditions(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "10.00", 5)
	reason := env.createReason(t, "Too slow", "1")
	retired := env.createReason(t, "Retired reason", "1")
	if err := NewCancelReasonService(repository.NewCancelReasonRepository(env.db)).Delete(context.Background(), retired.ID, StaffActor(1)); err != nil {
		t.Fatalf("delete reason failed: %v", err)
	}

	shipped := env.createOrder(t, 5, CreateOrderItem{VariationID: mug.ID, Quantity: 1})
	for _, target := range []string{constants.OrderStatusProcessing, constants.OrderStatusShipped} {
		if _, err := env.transition(shipped.ID, "", target, StaffActor(1)); err != nil {
			t.Fatalf("transition failed: %v", err)
		}
	}
	pending := env.createOrder(t, 5, CreateOrderItem{VariationID: mug.ID, Quantity: 1})

	tests := []struct {
		name  string
		input CancelOrderInput
		want  error
	}{
		{"shipped_order", CancelOrderInput{OrderID: shipped.ID, CancelReasonID: reason.ID, Actor: CustomerActor(5)}, ErrInvalidState},
		{"missing_order", CancelOrderInput{OrderID: 999, CancelReasonID: reason.ID, Actor: CustomerActor(5)}, ErrNotFound},
		{"missing_reason", CancelOrderInput{OrderID: pending.ID, CancelReasonID: 999, Actor: CustomerActor(5)}, ErrNotFound},
		{"deleted_reason", CancelOrderInput{OrderID: pending.ID, CancelReasonID: retired.ID, Actor: CustomerActor(5)}, ErrNotFound},
		{"no_reason", CancelOrderInput{OrderID: pending.ID, Actor: CustomerActor(5)}, ErrValidation},
		{"stranger", CancelOrderInput{OrderID: pending.ID, CancelReasonID: reason.ID, Actor: CustomerActor(6)}, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.orders.CancelOrder(context.Background(), tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	current, err := env.orders.GetOrder(context.Background(), pending.ID, CustomerActor(5))
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if current.Status != constants.OrderStatusPending || current.RefundAmount != nil {
		t.Fatalf("rejected cancellations must leave the order untouched: %+v", current)
	}
}

func TestConcurrentCancelExactlyOneWins(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "10.00", 1)
	reason := env.createReason(t, "Ordered twice", "1")
	order := env.createOrder(t, 5, CreateOrderItem{VariationID: mug.ID, Quantity: 1})

	expectations := []string{constants.OrderStatusPending, constants.OrderStatusProcessing}
	errs := make([]error, len(expectations))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, expected := range expectations {
		wg.Add(1)
		go func(i int, expected string) {
			defer wg.Done()
			<-start
			_, errs[i] = env.orders.CancelOrder(context.Background(), CancelOrderInput{
				OrderID:        order.ID,
				CancelReasonID: reason.ID,
				ExpectedStatus: expected,
				Actor:          StaffActor(uint(i + 1)),
			})
		}(i, expected)
	}
	close(start)
	wg.Wait()

	assertSingleWinner(t, errs)
	history := env.history(t, order.ID)
	if len(history) != 2 || history[1].NewStatus != constants.OrderStatusCanceled {
		t.Fatalf("expected a single cancel row, got %+v", history)
	}
}

func TestConcurrentTransitionExactlyOneWins(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "10.00", 1)
	order := env.createOrder(t, 5, CreateOrderItem{VariationID: mug.ID, Quantity: 1})
	if _, err := env.transition(order.ID, constants.OrderStatusPending, constants.OrderStatusProcessing, StaffActor(1)); err != nil {
		t.Fatalf("mark processing failed: %v", err)
	}

	// 同一订单的并发请求：基于过期视图的请求与落后的同类请求都应冲突
	requests := []struct {
		expected string
		target   string
	}{
		{constants.OrderStatusPending, constants.OrderStatusProcessing},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped},
		{constants.OrderStatusPending, constants.OrderStatusProcessing},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped},
	}
	errs := make([]error, len(requests))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, expected, target string) {
			defer wg.Done()
			<-start
			_, errs[i] = env.transition(order.ID, expected, target, StaffActor(uint(i+1)))
		}(i, req.expected, req.target)
	}
	close(start)
	wg.Wait()

	assertSingleWinner(t, errs)
	history := env.history(t, order.ID)
	if len(history) != 3 || history[2].NewStatus != constants.OrderStatusShipped {
		t.Fatalf("expected a single shipped row, got %+v", history)
	}
}

func assertSingleWinner(t *testing.T, errs []error) {
	t.Helper()
	success := 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case !errors.Is(err, ErrConflict):
			t.Fatalf("expected conflict for the losing request, got %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one success, got %d (%v)", success, errs)
	}
}

func TestListOrdersScopesCustomers(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "10.00", 10)
	env.createOrder(t, 1, CreateOrderItem{VariationID: mug.ID, Quantity: 1})
	env.createOrder(t, 1, CreateOrderItem{VariationID: mug.ID, Quantity: 1})
	env.createOrder(t, 2, CreateOrderItem{VariationID: mug.ID, Quantity: 1})

	own, total, err := env.orders.ListOrders(context.Background(), OrderListInput{Page: 1, PageSize: 10, UserID: 2}, CustomerActor(1))
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 2 || len(own) != 2 {
		t.Fatalf("customer must only see own orders, got total=%d", total)
	}
	all, total, err := env.orders.ListOrders(context.Background(), OrderListInput{Page: 1, PageSize: 10}, StaffActor(1))
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("staff must see all orders, got total=%d", total)
	}
}

func TestDeleteStatusChangeStaffOnly(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.createVariation(t, "10.00", 1)
	order := env.createOrder(t, 5, CreateOrderItem{VariationID: mug.ID, Quantity: 1})
	changes := env.history(t, order.ID)

	if err := env.orders.DeleteStatusChange(context.Background(), changes[0].ID, CustomerActor(5)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := env.orders.DeleteStatusChange(context.Background(), changes[0].ID, StaffActor(1)); err != nil {
		t.Fatalf("delete status change failed: %v", err)
	}
	if got := len(env.history(t, order.ID)); got != 0 {
		t.Fatalf("expected history hidden after delete, got %d", got)
	}
	if err := env.orders.DeleteStatusChange(context.Background(), changes[0].ID, StaffActor(1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	current, err := env.orders.GetOrder(context.Background(), order.ID, StaffActor(1))
	if err != nil || current.Status != constants.OrderStatusPending {
		t.Fatalf("order status must be unaffected: %v", err)
	}
}

func TestCalculateRefund(t *testing.T) {
	tests := []struct {
		total string
		rate  string
		want  string
	}{
		{"100.00", "0.5", "50.00"},
		{"10.01", "0.5", "5.01"},
		{"0.03", "0.5", "0.02"},
		{"99.99", "1", "99.99"},
		{"99.99", "0", "0.00"},
		{"33.33", "0.3333", "11.11"},
	}
	for _, tt := range tests {
		got, err := CalculateRefund(models.MustMoney(tt.total), decimal.RequireFromString(tt.rate))
		if err != nil {
			t.Fatalf("CalculateRefund(%s, %s) error: %v", tt.total, tt.rate, err)
		}
		if got.String() != tt.want {
			t.Fatalf("CalculateRefund(%s, %s) = %s, want %s", tt.total, tt.rate, got.String(), tt.want)
		}
	}
	if _, err := CalculateRefund(models.MustMoney("10.00"), decimal.RequireFromString("1.01")); !errors.Is(err, ErrRefundRateInvalid) {
		t.Fatalf("expected invalid rate, got %v", err)
	}
}
