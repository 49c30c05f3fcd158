package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comanda-next/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: "0", Mode: "debug"},
		Session: config.SessionConfig{Secret: "bootstrap-test-secret-0123456789abcdef", ExpireHours: 1},
		Store:   config.StoreConfig{Driver: "memory", PurgeIntervalSeconds: 60},
	}
}

func TestBuildRunnerModes(t *testing.T) {
	cfg := memoryConfig()

	runner, err := BuildRunner(cfg, ModeAPI)
	if err != nil {
		t.Fatalf("build api runner failed: %v", err)
	}
	if len(runner.services) != 1 || runner.services[0].Name() != "http" {
		t.Fatalf("api mode should only run http, got %d services", len(runner.services))
	}

	runner, err = BuildRunner(cfg, ModeAll)
	if err != nil {
		t.Fatalf("build all runner failed: %v", err)
	}
	if len(runner.services) != 2 {
		t.Fatalf("all mode should run http and worker, got %d services", len(runner.services))
	}

	cfg.Store.PurgeIntervalSeconds = 0
	if _, err := BuildRunner(cfg, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue or purge should fail")
	}
	runner, err = BuildRunner(cfg, ModeAll)
	if err != nil {
		t.Fatalf("all mode should degrade to http only: %v", err)
	}
	if len(runner.services) != 1 {
		t.Fatalf("expected http only, got %d services", len(runner.services))
	}
}

type stubService struct {
	name    string
	started chan struct{}
	stopped bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	return nil
}

func (s *stubService) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func TestRunnerStopsServicesOnCancel(t *testing.T) {
	svc := &stubService{name: "stub", started: make(chan struct{})}
	runner := NewRunner(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()

	<-svc.started
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("runner should exit cleanly, got %v", err)
	}
	if !svc.stopped {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerClosersRunInReverseOrder(t *testing.T) {
	runner := NewRunner(&stubService{name: "stub", started: make(chan struct{})})
	var order []string
	runner.OnClose(func() error { order = append(order, "first"); return nil })
	runner.OnClose(func() error { order = append(order, "second"); return errors.New("boom") })
	runner.OnClose(nil)

	runner.close(nil)
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("unexpected close order: %v", order)
	}
	runner.close(nil)
	if len(order) != 2 {
		t.Fatalf("closers must run once, got %v", order)
	}
}

func TestNormalizeOptionsAndValidateMode(t *testing.T) {
	opts := normalizeOptions(Options{Mode: " API "})
	if opts.Mode != ModeAPI || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected normalized options: %+v", opts)
	}
	if normalizeOptions(Options{}).Mode != ModeAll {
		t.Fatalf("empty mode should default to all")
	}
	if err := validateMode(ModeWorker); err != nil {
		t.Fatalf("worker mode should be valid: %v", err)
	}
	if err := validateMode("cron"); err == nil {
		t.Fatalf("unknown mode should be rejected")
	}
	if err := Run(Options{Config: memoryConfig(), Mode: "cron"}); err == nil {
		t.Fatalf("run should refuse unknown mode")
	}
}

func TestHTTPServiceAppliesServerTimeouts(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{
		Host:                     "127.0.0.1",
		Port:                     "9090",
		ReadHeaderTimeoutSeconds: 5,
	}, nil)
	if svc.server.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", svc.server.Addr)
	}
	if svc.server.ReadHeaderTimeout != 5*time.Second || svc.server.IdleTimeout != 0 {
		t.Fatalf("unexpected timeouts: %v %v", svc.server.ReadHeaderTimeout, svc.server.IdleTimeout)
	}
}
