package models

import (
	"time"

	"gorm.io/gorm"
)

// StatusChange 订单状态变更记录（只追加）
type StatusChange struct {
	ID        uint           `gorm:"primarykey" json:"id"`                        // 主键
	OrderID   uint           `gorm:"index;not null" json:"order_id"`              // 订单ID
	OldStatus string         `gorm:"type:varchar(32)" json:"old_status"`          // 变更前状态（创建时为空）
	NewStatus string         `gorm:"type:varchar(32);not null" json:"new_status"` // 变更后状态
	ChangedAt time.Time      `gorm:"index;not null" json:"changed_at"`            // 变更时间
	ChangedBy string         `gorm:"type:varchar(64);not null" json:"changed_by"` // 操作者
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间（仅管理纠错）
	DeletedBy string         `gorm:"type:varchar(64)" json:"-"`                   // 删除操作者
}

// TableName 指定表名
func (StatusChange) TableName() string {
	return "status_changes"
}
