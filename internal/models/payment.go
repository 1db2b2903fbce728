package models

import (
	"time"
)

// Payment 支付记录（与订单一对一）
type Payment struct {
	ID          uint       `gorm:"primarykey" json:"id"`                      // 主键
	OrderID     uint       `gorm:"uniqueIndex;not null" json:"order_id"`      // 订单ID
	Amount      Money      `gorm:"type:decimal(20,2);not null" json:"amount"` // 支付金额
	Status      string     `gorm:"index;not null" json:"status"`              // 支付状态
	ProviderRef string     `gorm:"index" json:"provider_ref,omitempty"`       // 第三方流水号
	ExpiresAt   time.Time  `gorm:"index;not null" json:"expires_at"`          // 支付截止时间
	PaidAt      *time.Time `gorm:"index" json:"paid_at,omitempty"`            // 支付时间
	ExpiredAt   *time.Time `gorm:"index" json:"expired_at,omitempty"`         // 过期处理时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`                   // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// IsExpiredAt 判断支付在给定时间是否已超时
func (p Payment) IsExpiredAt(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}
