package worker

import (
	"context"
	"errors"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/store"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务，同时负责周期清理过期会话数据
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	purger        store.Purger
	purgeInterval time.Duration
}

// NewService 创建异步队列服务
//
// 队列未启用时只运行过期清理；两者都不可用时返回错误。
func NewService(cfg *config.QueueConfig, consumer *Consumer, purger store.Purger, purgeInterval time.Duration) (*Service, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	s := &Service{
		name:          "worker",
		consumer:      consumer,
		purger:        purger,
		purgeInterval: purgeInterval,
	}
	if cfg != nil && cfg.Enabled {
		opt, serverCfg := queue.BuildServerConfig(cfg)
		s.server = asynq.NewServer(opt, serverCfg)
		s.mux = asynq.NewServeMux()
		consumer.Register(s.mux)
	}
	if s.server == nil && !s.purgeEnabled() {
		return nil, errors.New("queue disabled and store purge not available")
	}
	return s, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

func (s *Service) purgeEnabled() bool {
	return s != nil && s.purger != nil && s.purgeInterval > 0
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || (s.server == nil && !s.purgeEnabled()) {
		return errors.New("worker not initialized")
	}
	if s.server == nil {
		s.runPurgeLoop(ctx)
		return nil
	}
	if s.purgeEnabled() {
		go s.runPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runPurgeLoop(ctx context.Context) {
	if !s.purgeEnabled() {
		return
	}
	ticker := time.NewTicker(s.purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeOnce(ctx)
		}
	}
}

func (s *Service) purgeOnce(ctx context.Context) {
	purged, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		logger.Warnw("worker_store_purge_failed", "error", err)
		return
	}
	if purged > 0 {
		logger.Infow("worker_store_purged", "count", purged)
	}
}
