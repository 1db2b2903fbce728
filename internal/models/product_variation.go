package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariation 商品规格表（价格+库存维度）
type ProductVariation struct {
	ID          uint           `gorm:"primarykey" json:"id"`                               // 主键
	ProductID   uint           `gorm:"index;not null" json:"product_id"`                   // 商品ID
	Name        string         `gorm:"type:varchar(128);not null" json:"name"`             // 规格名称
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	StockTotal  int            `gorm:"not null;default:0" json:"stock_total"`              // 库存总量
	StockLocked int            `gorm:"not null;default:0" json:"stock_locked"`             // 待支付占用量
	StockSold   int            `gorm:"not null;default:0" json:"stock_sold"`               // 已售量
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (ProductVariation) TableName() string {
	return "product_variations"
}

// Available 可售库存
func (v ProductVariation) Available() int {
	return v.StockTotal - v.StockLocked - v.StockSold
}
