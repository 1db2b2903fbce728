package repository

import (
	"errors"

	"github.com/handmade-market/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatusIfCurrent(id uint, expected, target string, updates map[string]interface{}) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单明细
func (r *GormOrderRepository) Create(order *models.Order) error {
	details := order.Details
	order.Details = nil
	if err := r.db.Create(order).Error; err != nil {
		order.Details = details
		return err
	}
	for i := range details {
		details[i].OrderID = order.ID
	}
	if len(details) > 0 {
		if err := r.db.Create(&details).Error; err != nil {
			return err
		}
	}
	order.Details = details
	return nil
}

// GetByID 根据 ID 获取订单（含明细）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return r.first(r.db, id)
}

// GetByIDForUpdate 行锁读取订单，需在事务内调用
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	return r.first(lockForUpdate(r.db), id)
}

func (r *GormOrderRepository) first(query *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := query.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 分页查询订单
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query.Order("id desc"), filter.Page, filter.PageSize)
	if err := query.Preload("Details").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatusIfCurrent 仅当当前状态等于 expected 时更新状态，返回受影响行数
func (r *GormOrderRepository) UpdateStatusIfCurrent(id uint, expected, target string, updates map[string]interface{}) (int64, error) {
	values := map[string]interface{}{"status": target}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(values)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
