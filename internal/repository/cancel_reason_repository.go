package repository

import (
	"errors"
	"time"

	"github.com/handmade-market/internal/models"

	"gorm.io/gorm"
)

// CancelReasonRepository 取消原因数据访问接口
type CancelReasonRepository interface {
	List(includeDeleted bool) ([]models.CancelReason, error)
	ListPage(page, pageSize int) ([]models.CancelReason, int64, error)
	GetByID(id uint) (*models.CancelReason, error)
	Create(reason *models.CancelReason) error
	Update(reason *models.CancelReason) error
	SoftDelete(id uint, deletedBy string, at time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCancelReasonRepository
}

// GormCancelReasonRepository GORM 实现
type GormCancelReasonRepository struct {
	db *gorm.DB
}

// NewCancelReasonRepository 创建取消原因仓库
func NewCancelReasonRepository(db *gorm.DB) *GormCancelReasonRepository {
	return &GormCancelReasonRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCancelReasonRepository) WithTx(tx *gorm.DB) *GormCancelReasonRepository {
	if tx == nil {
		return r
	}
	return &GormCancelReasonRepository{db: tx}
}

// List 列出取消原因，includeDeleted 为 true 时包含已软删除记录
func (r *GormCancelReasonRepository) List(includeDeleted bool) ([]models.CancelReason, error) {
	query := r.db
	if includeDeleted {
		query = query.Unscoped()
	}
	var reasons []models.CancelReason
	if err := query.Order("id asc").Find(&reasons).Error; err != nil {
		return nil, err
	}
	return reasons, nil
}

// ListPage 分页列出未删除的取消原因
func (r *GormCancelReasonRepository) ListPage(page, pageSize int) ([]models.CancelReason, int64, error) {
	query := r.db.Model(&models.CancelReason{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reasons []models.CancelReason
	if err := applyPagination(query.Order("id asc"), page, pageSize).Find(&reasons).Error; err != nil {
		return nil, 0, err
	}
	return reasons, total, nil
}

// GetByID 获取未删除的取消原因
func (r *GormCancelReasonRepository) GetByID(id uint) (*models.CancelReason, error) {
	var reason models.CancelReason
	if err := r.db.First(&reason, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reason, nil
}

// Create 创建取消原因
func (r *GormCancelReasonRepository) Create(reason *models.CancelReason) error {
	return r.db.Create(reason).Error
}

// Update 更新取消原因
func (r *GormCancelReasonRepository) Update(reason *models.CancelReason) error {
	return r.db.Model(reason).Select("description", "refund_rate", "updated_at").Updates(reason).Error
}

// SoftDelete 软删除并记录删除人
func (r *GormCancelReasonRepository) SoftDelete(id uint, deletedBy string, at time.Time) (int64, error) {
	result := r.db.Model(&models.CancelReason{}).
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
