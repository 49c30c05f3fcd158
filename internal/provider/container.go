package provider

import (
	"time"

	"github.com/comanda-next/internal/cache"
	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/service"
	"github.com/comanda-next/internal/store"
	"github.com/comanda-next/internal/upstream"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       store.KV
	Upstream    *upstream.Client

	// Repositories
	CartRepo          repository.CartRepository
	TableRepo         repository.TableRepository
	CheckoutStateRepo repository.CheckoutStateRepository
	CatalogRepo       repository.CatalogRepository
	SubmissionRepo    repository.OrderSubmissionRepository

	// Services
	SessionService  *service.SessionService
	CartService     *service.CartService
	CatalogService  *service.CatalogService
	TableService    *service.TableService
	CheckoutService *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
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

	kv, err := store.Open(cfg.Store, models.DB, cache.Client(), cache.Prefix())
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Store:       kv,
		Upstream:    upstream.New(cfg.Upstream),
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	c.initServices()

	return c, nil
}

// Close 释放队列与缓存连接
func (c *Container) Close() error {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	return cache.Close()
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.CartRepo = repository.NewCartRepository(c.Store)
	c.TableRepo = repository.NewTableRepository(c.Store)
	c.CheckoutStateRepo = repository.NewCheckoutStateRepository(c.Store)
	c.CatalogRepo = repository.NewCatalogRepository(c.Store)
	c.SubmissionRepo = repository.NewOrderSubmissionRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.SessionService = service.NewSessionService(cfg.Session)
	c.CartService = service.NewCartService(c.CartRepo)
	c.CatalogService = service.NewCatalogService(
		c.CatalogRepo,
		c.Upstream,
		time.Duration(cfg.Catalog.SnapshotTTLSeconds)*time.Second,
		time.Duration(cfg.Catalog.SharedCacheSeconds)*time.Second,
	)
	c.TableService = service.NewTableService(
		c.TableRepo,
		c.QueueClient,
		time.Duration(cfg.Table.BindingTTLHours)*time.Hour,
	)
	c.CheckoutService = service.NewCheckoutService(
		c.CheckoutStateRepo,
		c.SubmissionRepo,
		c.CartService,
		c.CatalogService,
		c.TableService,
		c.Upstream,
		c.QueueClient,
		service.CheckoutOptions{
			SuccessRevert:        time.Duration(cfg.Checkout.SuccessRevertSeconds) * time.Second,
			ConfirmationPath:     cfg.Checkout.ConfirmationPath,
			ClearTableOnFinalize: cfg.Table.ClearOnFinalize,
			InFlightTimeout:      time.Duration(cfg.Checkout.InFlightTimeoutSeconds) * time.Second,
		},
	)
}
