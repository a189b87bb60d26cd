package provider

import (
	"github.com/atelier-next/internal/authz"
	"github.com/atelier-next/internal/cache"
	"github.com/atelier-next/internal/config"
	"github.com/atelier-next/internal/logger"
	"github.com/atelier-next/internal/models"
	"github.com/atelier-next/internal/queue"
	"github.com/atelier-next/internal/repository"
	"github.com/atelier-next/internal/service"
)

// Container wires repositories and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	StaffRepo     repository.StaffRepository
	ProfileRepo   repository.ProfileRepository
	OrderRepo     repository.OrderRepository
	DashboardRepo repository.DashboardRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	ProfileService     *service.ProfileService
	OrderService       *service.OrderService
	OrderActionService *service.OrderActionService
	DashboardService   *service.DashboardService
	EmailService       *service.EmailService
}

// NewContainer builds the container from global state (config, DB).
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

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
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.StaffRepo = repository.NewStaffRepository(db)
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
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

	clock := service.SystemClock{}
	c.AuthService = service.NewAuthService(c.Config, c.StaffRepo)
	c.ProfileService = service.NewProfileService(c.ProfileRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProfileRepo, c.Config.Order.NoPrefix, clock)
	c.OrderActionService = service.NewOrderActionService(c.OrderRepo, c.ProfileRepo, c.QueueClient, clock)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, clock)
	c.EmailService = service.NewEmailService(&c.Config.Email)
}
