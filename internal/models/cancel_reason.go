package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CancelReason 取消原因表
type CancelReason struct {
	ID          uint            `gorm:"primarykey" json:"id"`                                    // 主键
	Description string          `gorm:"type:varchar(255);not null" json:"description"`           // 原因描述
	RefundRate  decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"refund_rate"` // 退款比例 [0,1]
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt   time.Time       `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`                       // 软删除时间
	DeletedBy   string          `gorm:"type:varchar(64)" json:"deleted_by,omitempty"`            // 删除操作者
}

// TableName 指定表名
func (CancelReason) TableName() string {
	return "cancel_reasons"
}
