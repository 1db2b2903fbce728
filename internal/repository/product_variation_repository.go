package repository

import (
	"errors"

	"github.com/handmade-market/internal/models"

	"gorm.io/gorm"
)

// ProductVariationRepository 商品规格（价格与库存）数据访问接口
type ProductVariationRepository interface {
	GetByID(id uint) (*models.ProductVariation, error)
	ListByIDs(ids []uint) ([]models.ProductVariation, error)
	Create(item *models.ProductVariation) error
	ReserveStock(id uint, quantity int) (int64, error)
	ReleaseStock(id uint, quantity int) (int64, error)
	ConsumeStock(id uint, quantity int) (int64, error)
	ReturnSoldStock(id uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) *GormProductVariationRepository
}

// GormProductVariationRepository GORM 实现
type GormProductVariationRepository struct {
	db *gorm.DB
}

// NewProductVariationRepository 创建商品规格仓库
func NewProductVariationRepository(db *gorm.DB) *GormProductVariationRepository {
	return &GormProductVariationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductVariationRepository) WithTx(tx *gorm.DB) *GormProductVariationRepository {
	if tx == nil {
		return r
	}
	return &GormProductVariationRepository{db: tx}
}

// GetByID 根据 ID 获取规格
func (r *GormProductVariationRepository) GetByID(id uint) (*models.ProductVariation, error) {
	var item models.ProductVariation
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByIDs 批量获取规格
func (r *GormProductVariationRepository) ListByIDs(ids []uint) ([]models.ProductVariation, error) {
	if len(ids) == 0 {
		return []models.ProductVariation{}, nil
	}
	var items []models.ProductVariation
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建规格
func (r *GormProductVariationRepository) Create(item *models.ProductVariation) error {
	return r.db.Create(item).Error
}

// ReserveStock 预占库存（可售量不足时不更新）
func (r *GormProductVariationRepository) ReserveStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock reserve params")
	}
	result := r.db.Model(&models.ProductVariation{}).
		Where("id = ? AND stock_total - stock_locked - stock_sold >= ?", id, quantity).
		Update("stock_locked", gorm.Expr("stock_locked + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseStock 释放库存占用
func (r *GormProductVariationRepository) ReleaseStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock release params")
	}
	result := r.db.Model(&models.ProductVariation{}).
		Where("id = ? AND stock_locked >= ?", id, quantity).
		Update("stock_locked", gorm.Expr("stock_locked - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ConsumeStock 支付成功后占用转已售
func (r *GormProductVariationRepository) ConsumeStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock consume params")
	}
	result := r.db.Model(&models.ProductVariation{}).
		Where("id = ? AND stock_locked >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock_locked": gorm.Expr("stock_locked - ?", quantity),
			"stock_sold":   gorm.Expr("stock_sold + ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReturnSoldStock 已售订单取消后退回库存
func (r *GormProductVariationRepository) ReturnSoldStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock return params")
	}
	result := r.db.Model(&models.ProductVariation{}).
		Where("id = ? AND stock_sold >= ?", id, quantity).
		Update("stock_sold", gorm.Expr("stock_sold - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
