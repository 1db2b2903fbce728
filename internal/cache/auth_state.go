package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/handmade-market/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// StaffAuthState 员工鉴权快照，避免每次请求查询数据库
type StaffAuthState struct {
	StaffID   uint   `json:"staff_id"`
	Username  string `json:"username"`
	IsSuper   bool   `json:"is_super"`
	UpdatedAt int64  `json:"updated_at"`
}

func staffAuthStateKey(staffID uint) string {
	return fmt.Sprintf("auth:staff:%d", staffID)
}

// BuildStaffAuthState 从员工模型构建鉴权快照
func BuildStaffAuthState(staff *models.Staff) *StaffAuthState {
	if staff == nil {
		return nil
	}
	return &StaffAuthState{
		StaffID:   staff.ID,
		Username:  staff.Username,
		IsSuper:   staff.IsSuper,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetStaffAuthState 获取员工鉴权快照
func GetStaffAuthState(ctx context.Context, staffID uint) (*StaffAuthState, bool, error) {
	if staffID == 0 {
		return nil, false, nil
	}
	var state StaffAuthState
	hit, err := GetJSON(ctx, staffAuthStateKey(staffID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetStaffAuthState 写入员工鉴权快照
func SetStaffAuthState(ctx context.Context, state *StaffAuthState) error {
	if state == nil || state.StaffID == 0 {
		return nil
	}
	return SetJSON(ctx, staffAuthStateKey(state.StaffID), state, authStateCacheTTL)
}
