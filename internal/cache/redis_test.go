package cache

import (
	"context"
	"testing"

	"github.com/comanda-next/internal/config"
)

func TestBuildOptionsFromURL(t *testing.T) {
	opt, err := buildOptions(&config.RedisConfig{URL: "redis://:secret@cache.local:6380/2", Host: "ignored"})
	if err != nil {
		t.Fatalf("build options failed: %v", err)
	}
	if opt.Addr != "cache.local:6380" || opt.DB != 2 || opt.Password != "secret" {
		t.Fatalf("unexpected options: addr=%s db=%d", opt.Addr, opt.DB)
	}
}

func TestBuildOptionsDefaults(t *testing.T) {
	opt, err := buildOptions(&config.RedisConfig{})
	if err != nil {
		t.Fatalf("build options failed: %v", err)
	}
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected default addr: %s", opt.Addr)
	}
}

func TestBuildOptionsInvalidURL(t *testing.T) {
	if _, err := buildOptions(&config.RedisConfig{URL: "://bad"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	var dest map[string]string
	hit, err := GetJSON(context.Background(), CatalogKey("unit-1"), &dest)
	if err != nil || hit {
		t.Fatalf("disabled cache should miss without error, hit=%v err=%v", hit, err)
	}
	if err := SetJSON(context.Background(), "k", "v", 0); err != nil {
		t.Fatalf("disabled set should be noop: %v", err)
	}
	if BuildKey(" catalog:x ") != Prefix()+":catalog:x" {
		t.Fatalf("unexpected key: %s", BuildKey(" catalog:x "))
	}
}
