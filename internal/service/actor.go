package service

import (
	"fmt"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/models"
)

// Actor 发起操作的主体（来自 JWT 声明或系统任务）
type Actor struct {
	UserID uint
	Role   string
}

// SystemActor 系统任务使用的操作者，跳过归属校验
func SystemActor() Actor {
	return Actor{Role: constants.ActorRoleSystem}
}

// CustomerActor 顾客操作者
func CustomerActor(userID uint) Actor {
	return Actor{UserID: userID, Role: constants.ActorRoleCustomer}
}

// StaffActor 员工操作者
func StaffActor(staffID uint) Actor {
	return Actor{UserID: staffID, Role: constants.ActorRoleStaff}
}

// IsSystem 是否系统操作者
func (a Actor) IsSystem() bool {
	return a.Role == constants.ActorRoleSystem
}

// IsStaff 是否员工
func (a Actor) IsStaff() bool {
	return a.Role == constants.ActorRoleStaff
}

// Name 写入状态变更记录的操作者标识
func (a Actor) Name() string {
	switch a.Role {
	case constants.ActorRoleSystem:
		return constants.SystemActorName
	case constants.ActorRoleStaff:
		return fmt.Sprintf("staff:%d", a.UserID)
	default:
		return fmt.Sprintf("user:%d", a.UserID)
	}
}

// CanAccess 订单归属人、员工或系统可以操作订单
func (a Actor) CanAccess(order *models.Order) bool {
	if order == nil {
		return false
	}
	if a.IsSystem() || a.IsStaff() {
		return true
	}
	return a.Role == constants.ActorRoleCustomer && a.UserID != 0 && a.UserID == order.UserID
}
