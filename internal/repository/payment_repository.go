package repository

import (
	"errors"
	"time"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByIDForUpdate(id uint) (*models.Payment, error)
	GetByOrderID(orderID uint) (*models.Payment, error)
	ListExpiredPending(now time.Time, limit int) ([]models.Payment, error)
	UpdateStatusIfCurrent(id uint, expected, target string, updates map[string]interface{}) (int64, error)
	UpdateStatusIfCurrentByOrder(orderID uint, expected, target string, updates map[string]interface{}) (int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByID 根据 ID 获取支付记录
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	return r.take(r.db.Where("id = ?", id))
}

// GetByIDForUpdate 行锁读取支付记录，需在事务内调用
func (r *GormPaymentRepository) GetByIDForUpdate(id uint) (*models.Payment, error) {
	return r.take(lockForUpdate(r.db).Where("id = ?", id))
}

// GetByOrderID 获取订单的支付记录
func (r *GormPaymentRepository) GetByOrderID(orderID uint) (*models.Payment, error) {
	return r.take(r.db.Where("order_id = ?", orderID))
}

func (r *GormPaymentRepository) take(query *gorm.DB) (*models.Payment, error) {
	var payment models.Payment
	if err := query.Take(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// ListExpiredPending 列出已过截止时间仍待支付的记录，按截止时间升序
func (r *GormPaymentRepository) ListExpiredPending(now time.Time, limit int) ([]models.Payment, error) {
	query := r.db.Where("status = ? AND expires_at < ?", constants.PaymentStatusPending, now).
		Order("expires_at asc").
		Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateStatusIfCurrent 仅当当前状态等于 expected 时更新，返回受影响行数
func (r *GormPaymentRepository) UpdateStatusIfCurrent(id uint, expected, target string, updates map[string]interface{}) (int64, error) {
	return r.updateStatusWhere(r.db.Where("id = ? AND status = ?", id, expected), target, updates)
}

// UpdateStatusIfCurrentByOrder 按订单更新支付状态（同样要求当前状态匹配）
func (r *GormPaymentRepository) UpdateStatusIfCurrentByOrder(orderID uint, expected, target string, updates map[string]interface{}) (int64, error) {
	return r.updateStatusWhere(r.db.Where("order_id = ? AND status = ?", orderID, expected), target, updates)
}

func (r *GormPaymentRepository) updateStatusWhere(query *gorm.DB, target string, updates map[string]interface{}) (int64, error) {
	values := map[string]interface{}{"status": target}
	for key, value := range updates {
		values[key] = value
	}
	result := query.Model(&models.Payment{}).Updates(values)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
