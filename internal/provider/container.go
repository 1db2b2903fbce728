package provider

import (
	"github.com/handmade-market/internal/authz"
	"github.com/handmade-market/internal/cache"
	"github.com/handmade-market/internal/config"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/queue"
	"github.com/handmade-market/internal/repository"
	"github.com/handmade-market/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	UnitOfWork  *repository.UnitOfWork

	// Repositories
	StaffRepo        repository.StaffRepository
	CancelReasonRepo repository.CancelReasonRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	EmailService        *service.EmailService
	OrderService        *service.OrderService
	PaymentService      *service.PaymentService
	CancelReasonService *service.CancelReasonService
	PaymentReconciler   *service.PaymentReconciler
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		UnitOfWork:  repository.NewUnitOfWork(models.DB, cfg.Order.TxTimeout()),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.StaffRepo = repository.NewStaffRepository(db)
	c.CancelReasonRepo = repository.NewCancelReasonRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.StaffRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.OrderService = service.NewOrderService(
		c.UnitOfWork,
		c.QueueClient,
		service.NewQueueRefundGateway(c.QueueClient),
		c.Config.Order.PaymentExpire(),
	)
	c.PaymentService = service.NewPaymentService(c.UnitOfWork, c.QueueClient)
	c.CancelReasonService = service.NewCancelReasonService(c.CancelReasonRepo)
	c.PaymentReconciler = service.NewPaymentReconciler(c.UnitOfWork, c.QueueClient, c.Config.Reconciler.BatchSize)
}
