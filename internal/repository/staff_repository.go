package repository

import (
	"errors"

	"github.com/handmade-market/internal/models"

	"gorm.io/gorm"
)

// StaffRepository 员工账号数据访问接口
type StaffRepository interface {
	GetByID(id uint) (*models.Staff, error)
	GetByUsername(username string) (*models.Staff, error)
	Create(staff *models.Staff) error
}

// GormStaffRepository GORM 实现
type GormStaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository 创建员工仓库
func NewStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// GetByID 根据 ID 获取员工
func (r *GormStaffRepository) GetByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// GetByUsername 根据账号获取员工
func (r *GormStaffRepository) GetByUsername(username string) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.Where("username = ?", username).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// Create 创建员工
func (r *GormStaffRepository) Create(staff *models.Staff) error {
	return r.db.Create(staff).Error
}
