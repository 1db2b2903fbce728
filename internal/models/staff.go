package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff 员工账号表（后台 JWT 主体）
type Staff struct {
	ID           uint           `gorm:"primarykey" json:"id"`                         // 主键
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`         // 账号
	PasswordHash string         `gorm:"not null" json:"-"`                            // 密码哈希（不返回给前端）
	IsSuper      bool           `gorm:"not null;default:false;index" json:"is_super"` // 是否超级管理员（免权限校验）
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Staff) TableName() string {
	return "staff"
}
