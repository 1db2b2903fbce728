package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const defaultTxTimeout = 5 * time.Second

// Repos 绑定到同一连接或事务的一组仓库
type Repos struct {
	Orders        *GormOrderRepository
	StatusChanges *GormStatusChangeRepository
	CancelReasons *GormCancelReasonRepository
	Payments      *GormPaymentRepository
	Variations    *GormProductVariationRepository
}

func newRepos(db *gorm.DB) Repos {
	return Repos{
		Orders:        NewOrderRepository(db),
		StatusChanges: NewStatusChangeRepository(db),
		CancelReasons: NewCancelReasonRepository(db),
		Payments:      NewPaymentRepository(db),
		Variations:    NewProductVariationRepository(db),
	}
}

// UnitOfWork 事务边界：一次业务操作的所有写入在同一事务内提交或回滚
type UnitOfWork struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewUnitOfWork 创建工作单元，timeout 为单次事务的超时上限
func NewUnitOfWork(db *gorm.DB, timeout time.Duration) *UnitOfWork {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &UnitOfWork{db: db, timeout: timeout}
}

// DB 返回底层连接
func (u *UnitOfWork) DB() *gorm.DB {
	return u.db
}

// Repos 返回非事务仓库（只读查询使用）
func (u *UnitOfWork) Repos(ctx context.Context) Repos {
	return newRepos(u.db.WithContext(ctx))
}

// Transaction 在带超时的事务内执行 fn；遇到锁冲突等瞬时错误时整体重试一次
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(repos Repos) error) error {
	err := u.attempt(ctx, fn)
	if err != nil && IsTransientError(err) && ctx.Err() == nil {
		err = u.attempt(ctx, fn)
	}
	return err
}

func (u *UnitOfWork) attempt(ctx context.Context, fn func(repos Repos) error) error {
	txCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	return u.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepos(tx))
	})
}
