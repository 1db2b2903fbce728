package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/handmade-market/internal/cache"
	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/repository"

	"github.com/shopspring/decimal"
)

const cancelReasonCacheTTL = 10 * time.Minute

// CancelReasonService 取消原因服务
type CancelReasonService struct {
	repo repository.CancelReasonRepository
}

// NewCancelReasonService 创建取消原因服务
func NewCancelReasonService(repo repository.CancelReasonRepository) *CancelReasonService {
	return &CancelReasonService{repo: repo}
}

// CancelReasonInput 创建/更新取消原因输入
type CancelReasonInput struct {
	Description string
	RefundRate  decimal.Decimal
}

// List 列出取消原因；未删除列表走缓存
func (s *CancelReasonService) List(ctx context.Context, includeDeleted bool) ([]models.CancelReason, error) {
	if includeDeleted {
		return s.repo.List(true)
	}
	var cached []models.CancelReason
	hit, cacheErr := cache.GetJSON(ctx, constants.CacheKeyCancelReasonsActive, &cached)
	if cacheErr == nil && hit {
		return cached, nil
	}
	reasons, err := s.repo.List(false)
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(ctx, constants.CacheKeyCancelReasonsActive, reasons, cancelReasonCacheTTL)
	return reasons, nil
}

// ListPage 分页列出未删除的取消原因
func (s *CancelReasonService) ListPage(page, pageSize int) ([]models.CancelReason, int64, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, 0, ErrPaginationInvalid
	}
	return s.repo.ListPage(page, pageSize)
}

// Get 获取未删除的取消原因
func (s *CancelReasonService) Get(id uint) (*models.CancelReason, error) {
	reason, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if reason == nil {
		return nil, ErrCancelReasonNotFound
	}
	return reason, nil
}

// Create 创建取消原因
func (s *CancelReasonService) Create(ctx context.Context, input CancelReasonInput) (*models.CancelReason, error) {
	description, err := normalizeCancelReasonInput(input)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	reason := &models.CancelReason{
		Description: description,
		RefundRate:  input.RefundRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(reason); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return reason, nil
}

// Update 更新取消原因（已删除的不可更新）
func (s *CancelReasonService) Update(ctx context.Context, id uint, input CancelReasonInput) (*models.CancelReason, error) {
	description, err := normalizeCancelReasonInput(input)
	if err != nil {
		return nil, err
	}
	reason, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	reason.Description = description
	reason.RefundRate = input.RefundRate
	reason.UpdatedAt = time.Now()
	if err := s.repo.Update(reason); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return reason, nil
}

// Delete 软删除取消原因，已引用它的订单保持不变
func (s *CancelReasonService) Delete(ctx context.Context, id uint, actor Actor) error {
	if !actor.IsStaff() {
		return ErrStaffOnly
	}
	affected, err := s.repo.SoftDelete(id, actor.Name(), time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCancelReasonNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *CancelReasonService) invalidate(ctx context.Context) {
	if err := cache.Del(ctx, constants.CacheKeyCancelReasonsActive); err != nil {
		logger.C(ctx).Warnw("cancel_reason_cache_invalidate_failed", "error", err)
	}
}

func normalizeCancelReasonInput(input CancelReasonInput) (string, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return "", ErrCancelReasonDescRequired
	}
	if utf8.RuneCountInString(description) > constants.CancelReasonDescriptionMaxLen {
		return "", ErrCancelReasonDescTooLong
	}
	if !isValidRefundRate(input.RefundRate) {
		return "", ErrRefundRateInvalid
	}
	return description, nil
}
