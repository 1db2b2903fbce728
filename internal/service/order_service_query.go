package service

import (
	"context"

	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/repository"
)

// OrderListInput 订单列表查询参数
type OrderListInput struct {
	Page     int
	PageSize int
	Status   string
	// UserID 仅员工可指定；顾客只能查看自己的订单
	UserID uint
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.uow.Repos(ctx).Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !actor.CanAccess(order) {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

// ListOrders 分页查询订单
func (s *OrderService) ListOrders(ctx context.Context, input OrderListInput, actor Actor) ([]models.Order, int64, error) {
	if input.Status != "" && !isKnownOrderStatus(input.Status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	filter := repository.OrderListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		Status:   input.Status,
		UserID:   input.UserID,
	}
	if !actor.IsStaff() && !actor.IsSystem() {
		if actor.UserID == 0 {
			return nil, 0, ErrOrderAccessDenied
		}
		filter.UserID = actor.UserID
	}
	return s.uow.Repos(ctx).Orders.List(filter)
}

// GetStatusHistory 获取订单状态变更历史，按变更时间升序
func (s *OrderService) GetStatusHistory(ctx context.Context, orderID uint, actor Actor) ([]models.StatusChange, error) {
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
	return repos.StatusChanges.ListByOrder(orderID)
}

// ListStatusChanges 员工分页浏览状态变更流水，orderID 为 0 时不限订单
func (s *OrderService) ListStatusChanges(ctx context.Context, orderID uint, page, pageSize int, actor Actor) ([]models.StatusChange, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, ErrStaffOnly
	}
	return s.uow.Repos(ctx).StatusChanges.List(repository.StatusChangeListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderID:  orderID,
	})
}

// DeleteStatusChange 员工纠错：软删除一条状态变更记录，订单当前状态不受影响
func (s *OrderService) DeleteStatusChange(ctx context.Context, id uint, actor Actor) error {
	if !actor.IsStaff() {
		return ErrStaffOnly
	}
	affected, err := s.uow.Repos(ctx).StatusChanges.SoftDelete(id, actor.Name(), s.now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusChangeNotFound
	}
	logger.C(ctx).Infow("order_status_change_deleted",
		"status_change_id", id,
		"actor", actor.Name(),
	)
	return nil
}
