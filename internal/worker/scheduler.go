package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/handmade-market/internal/cache"
	"github.com/handmade-market/internal/config"
	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/service"

	"github.com/robfig/cron/v3"
)

const (
	defaultReconcileSpec    = "@every 1m"
	defaultReconcileLockTTL = 55 * time.Second
)

// reconcileRunner 对账执行者
type reconcileRunner interface {
	RunOnce(ctx context.Context, now time.Time) (service.ReconcileReport, error)
}

// ReconcileScheduler 定时触发支付过期对账；多实例部署时用 Redis 锁保证同一时刻只有一个实例执行
type ReconcileScheduler struct {
	name       string
	spec       string
	lockTTL    time.Duration
	reconciler reconcileRunner
	cron       *cron.Cron
	now        func() time.Time
}

// NewReconcileScheduler 创建对账调度服务
func NewReconcileScheduler(cfg config.ReconcilerConfig, reconciler *service.PaymentReconciler) (*ReconcileScheduler, error) {
	if !cfg.Enabled {
		return nil, errors.New("reconciler disabled")
	}
	if reconciler == nil {
		return nil, errors.New("reconciler is nil")
	}
	return newReconcileScheduler(cfg, reconciler)
}

func newReconcileScheduler(cfg config.ReconcilerConfig, reconciler reconcileRunner) (*ReconcileScheduler, error) {
	spec := strings.TrimSpace(cfg.Spec)
	if spec == "" {
		spec = defaultReconcileSpec
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, err
	}
	lockTTL := defaultReconcileLockTTL
	if cfg.LockTTLSeconds > 0 {
		lockTTL = time.Duration(cfg.LockTTLSeconds) * time.Second
	}
	return &ReconcileScheduler{
		name:       "reconciler",
		spec:       spec,
		lockTTL:    lockTTL,
		reconciler: reconciler,
		now:        time.Now,
	}, nil
}

// Name 服务名称
func (s *ReconcileScheduler) Name() string {
	if s == nil || s.name == "" {
		return "reconciler"
	}
	return s.name
}

// Start 启动调度并阻塞到 ctx 结束
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	if s == nil || s.reconciler == nil {
		return errors.New("reconciler not initialized")
	}
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(s.spec, func() { s.tick(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	logger.Infow("reconciler_scheduler_started", "spec", s.spec)
	<-ctx.Done()
	return nil
}

// Stop 停止调度，等待正在执行的一轮结束
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick 单轮对账：抢不到锁说明其他实例正在执行
func (s *ReconcileScheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	lock, acquired, err := cache.TryLock(ctx, constants.LockKeyPaymentReconciler, s.lockTTL)
	if err != nil {
		logger.Warnw("reconciler_lock_failed", "error", err)
		return
	}
	if !acquired {
		logger.Debugw("reconciler_lock_busy")
		return
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warnw("reconciler_lock_release_failed", "error", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()
	if _, err := s.reconciler.RunOnce(runCtx, s.now()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warnw("reconciler_run_failed", "error", err)
	}
}
