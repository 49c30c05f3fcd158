package app

import (
	"context"
	"errors"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/provider"
	"github.com/comanda-next/internal/router"
	"github.com/comanda-next/internal/store"
	"github.com/comanda-next/internal/telemetry"
	"github.com/comanda-next/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		httpService := NewHTTPService(cfg.Server, telemetry.Handler(engine, cfg.Telemetry.ServiceName))
		services = append(services, httpService)
	}

	// 初始化 Worker 服务（队列消费 + 过期会话数据清理）
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		purger, _ := container.Store.(store.Purger)
		purgeInterval := time.Duration(cfg.Store.PurgeIntervalSeconds) * time.Second
		workerService, err := worker.NewService(&cfg.Queue, consumer, purger, purgeInterval)
		if err != nil {
			if mode == ModeWorker {
				return nil, err
			}
			// all 模式下仅运行 HTTP 服务，success 状态在读取时惰性回退
			logger.Warnw("app_worker_skipped", "error", err)
		} else {
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnClose(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if err := validateMode(opts.Mode); err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Init(context.Background(), opts.Config.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			opts.Logger.Warnw("telemetry_shutdown_failed", "error", err)
		}
	}()

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
