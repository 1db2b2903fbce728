package repository

import (
	"errors"
	"time"

	"github.com/handmade-market/internal/models"

	"gorm.io/gorm"
)

// StatusChangeRepository 订单状态变更记录数据访问接口
type StatusChangeRepository interface {
	Create(change *models.StatusChange) error
	GetByID(id uint) (*models.StatusChange, error)
	ListByOrder(orderID uint) ([]models.StatusChange, error)
	List(filter StatusChangeListFilter) ([]models.StatusChange, int64, error)
	SoftDelete(id uint, deletedBy string, at time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormStatusChangeRepository
}

// GormStatusChangeRepository GORM 实现
type GormStatusChangeRepository struct {
	db *gorm.DB
}

// NewStatusChangeRepository 创建状态变更仓库
func NewStatusChangeRepository(db *gorm.DB) *GormStatusChangeRepository {
	return &GormStatusChangeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStatusChangeRepository) WithTx(tx *gorm.DB) *GormStatusChangeRepository {
	if tx == nil {
		return r
	}
	return &GormStatusChangeRepository{db: tx}
}

// Create 追加状态变更记录
func (r *GormStatusChangeRepository) Create(change *models.StatusChange) error {
	return r.db.Create(change).Error
}

// GetByID 根据 ID 获取记录
func (r *GormStatusChangeRepository) GetByID(id uint) (*models.StatusChange, error) {
	var change models.StatusChange
	if err := r.db.First(&change, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &change, nil
}

// ListByOrder 按时间顺序列出订单的状态变更
func (r *GormStatusChangeRepository) ListByOrder(orderID uint) ([]models.StatusChange, error) {
	var changes []models.StatusChange
	if err := r.db.Where("order_id = ?", orderID).
		Order("changed_at asc").
		Order("id asc").
		Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

// List 分页列出状态变更（后台）
func (r *GormStatusChangeRepository) List(filter StatusChangeListFilter) ([]models.StatusChange, int64, error) {
	query := r.db.Model(&models.StatusChange{})
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var changes []models.StatusChange
	query = applyPagination(query.Order("id desc"), filter.Page, filter.PageSize)
	if err := query.Find(&changes).Error; err != nil {
		return nil, 0, err
	}
	return changes, total, nil
}

// SoftDelete 软删除记录并写入删除人
func (r *GormStatusChangeRepository) SoftDelete(id uint, deletedBy string, at time.Time) (int64, error) {
	result := r.db.Model(&models.StatusChange{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": at,
			"deleted_by": deletedBy,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
