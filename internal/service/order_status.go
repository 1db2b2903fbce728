package service

import (
	"time"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/repository"
)

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCanceled:   true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:  true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusCanceled: {
		constants.OrderStatusRefunded: true,
	},
}

// 确认收款、发货、退款只能由员工或系统发起
var staffOnlyTargets = map[string]bool{
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusRefunded:   true,
}

var knownOrderStatuses = map[string]bool{
	constants.OrderStatusPending:    true,
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusDelivered:  true,
	constants.OrderStatusCanceled:   true,
	constants.OrderStatusRefunded:   true,
}

func isTransitionAllowed(from, to string) bool {
	return allowedTransitions[from][to]
}

func isKnownOrderStatus(status string) bool {
	return knownOrderStatuses[status]
}

func isCancelableStatus(status string) bool {
	return status == constants.OrderStatusPending || status == constants.OrderStatusProcessing
}

// transitionRequest 一次状态变更请求，Expected 为空时以锁定读取到的状态为准
type transitionRequest struct {
	OrderID  uint
	Expected string
	Target   string
	Actor    Actor
	Now      time.Time
	Updates  map[string]interface{}
	// Prepare 在校验通过后、写入前执行，可补充字段（如退款金额）
	Prepare func(order *models.Order, updates map[string]interface{}) error
}

// applyTransition 在事务内校验并写入状态变更：订单状态与变更记录同成同败
func applyTransition(repos repository.Repos, req transitionRequest) (*models.Order, error) {
	if !isKnownOrderStatus(req.Target) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := repos.Orders.GetByIDForUpdate(req.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !req.Actor.CanAccess(order) {
		return nil, ErrOrderAccessDenied
	}
	if staffOnlyTargets[req.Target] && !req.Actor.IsStaff() && !req.Actor.IsSystem() {
		return nil, ErrTransitionStaffOnly
	}
	if req.Expected != "" && order.Status != req.Expected {
		return nil, ErrStatusMismatch
	}
	if !isTransitionAllowed(order.Status, req.Target) {
		return nil, ErrTransitionNotAllowed
	}
	if req.Target == constants.OrderStatusRefunded && order.RefundAmount == nil {
		return nil, ErrRefundNotComputed
	}

	updates := map[string]interface{}{"updated_at": req.Now}
	for key, value := range req.Updates {
		updates[key] = value
	}
	if req.Target == constants.OrderStatusCanceled {
		updates["canceled_at"] = req.Now
	}
	if req.Prepare != nil {
		if err := req.Prepare(order, updates); err != nil {
			return nil, err
		}
	}

	from := order.Status
	affected, err := repos.Orders.UpdateStatusIfCurrent(order.ID, from, req.Target, updates)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStatusMismatch
	}
	if err := repos.StatusChanges.Create(&models.StatusChange{
		OrderID:   order.ID,
		OldStatus: from,
		NewStatus: req.Target,
		ChangedAt: req.Now,
		ChangedBy: req.Actor.Name(),
	}); err != nil {
		return nil, err
	}

	if err := applyTransitionEffects(repos, order, from, req.Target, req.Now); err != nil {
		return nil, err
	}
	return repos.Orders.GetByID(order.ID)
}

// applyTransitionEffects 处理进入新状态时对支付与库存的联动
func applyTransitionEffects(repos repository.Repos, order *models.Order, from, to string, now time.Time) error {
	switch to {
	case constants.OrderStatusProcessing:
		if _, err := repos.Payments.UpdateStatusIfCurrentByOrder(order.ID, constants.PaymentStatusPending, constants.PaymentStatusCompleted, map[string]interface{}{
			"paid_at":    now,
			"updated_at": now,
		}); err != nil {
			return err
		}
		return consumeStockByDetails(repos.Variations, order.ID, order.Details)
	case constants.OrderStatusCanceled:
		if _, err := repos.Payments.UpdateStatusIfCurrentByOrder(order.ID, constants.PaymentStatusPending, constants.PaymentStatusCanceled, map[string]interface{}{
			"updated_at": now,
		}); err != nil {
			return err
		}
		if from == constants.OrderStatusProcessing {
			return returnSoldStockByDetails(repos.Variations, order.ID, order.Details)
		}
		return releaseStockByDetails(repos.Variations, order.ID, order.Details)
	}
	return nil
}
