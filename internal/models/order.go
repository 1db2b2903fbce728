package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                     // 订单编号
	UserID         uint           `gorm:"index;not null" json:"user_id"`                            // 下单用户ID
	TotalPrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 订单总额（明细小计之和）
	OrderDate      time.Time      `gorm:"index;not null" json:"order_date"`                         // 下单时间
	Status         string         `gorm:"index;not null" json:"status"`                             // 订单状态
	Address        string         `gorm:"type:varchar(500);not null" json:"address"`                // 收货地址
	CustomerName   string         `gorm:"type:varchar(100)" json:"customer_name"`                   // 收货人
	CustomerEmail  string         `gorm:"type:varchar(255);index" json:"customer_email,omitempty"`  // 通知邮箱
	Phone          string         `gorm:"type:varchar(32)" json:"phone,omitempty"`                  // 联系电话
	Note           string         `gorm:"type:varchar(500)" json:"note,omitempty"`                  // 备注
	Locale         string         `gorm:"type:varchar(16)" json:"locale,omitempty"`                 // 通知语言
	CancelReasonID *uint          `gorm:"index" json:"cancel_reason_id,omitempty"`                  // 取消原因ID
	RefundAmount   *Money         `gorm:"type:decimal(20,2)" json:"refund_amount,omitempty"`        // 退款金额（取消时计算）
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at,omitempty"`                       // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	Details []OrderDetail `gorm:"foreignKey:OrderID" json:"details,omitempty"` // 订单明细
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderDetail 订单明细表（创建后不可变）
type OrderDetail struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	VariationID uint      `gorm:"index;not null" json:"variation_id"`                      // 商品规格ID
	Quantity    int       `gorm:"not null" json:"quantity"`                                // 数量
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 下单时单价快照
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (OrderDetail) TableName() string {
	return "order_details"
}

// LineTotal 明细小计
func (d OrderDetail) LineTotal() Money {
	return d.UnitPrice.MulInt(d.Quantity)
}
