package models

import (
	"strings"

	"github.com/handmade-market/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const defaultStaffPassword = "staff123"

// InitDefaultStaff 初始化默认员工账号（仅在无任何员工时创建）
func InitDefaultStaff(username, password string) error {
	var count int64
	if err := DB.Model(&Staff{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}
	usingDefault := password == ""
	if usingDefault {
		password = defaultStaffPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staff := Staff{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      true,
	}
	if err := DB.Create(&staff).Error; err != nil {
		return err
	}

	if usingDefault {
		logger.Warnw("default_staff_created_with_default_password", "username", username)
	} else {
		logger.Infow("default_staff_created", "username", username)
	}
	return nil
}
