package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/handmade-market/internal/config"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/queue"

	"github.com/hibiken/asynq"
)

// Service asynq 消费者服务（状态邮件、退款指令、支付过期任务）
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建队列消费者服务，队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费者并阻塞到 ctx 结束；信号由 app.Runner 统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	logger.Infow("worker_started", "tasks", []string{queue.TaskOrderStatusEmail, queue.TaskOrderRefund, queue.TaskPaymentExpire})
	<-ctx.Done()
	return nil
}

// Stop 等待处理中的任务结束后关闭
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
