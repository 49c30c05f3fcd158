package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/store"
)

func newTableServiceForTest(t *testing.T, ttl time.Duration) (*TableService, *time.Time) {
	t.Helper()
	queueClient, _ := queue.NewClient(&config.QueueConfig{Enabled: false})
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	repo := repository.NewTableRepository(store.NewMemoryStore())
	svc := NewTableService(repo, queueClient, ttl)
	svc.now = func() time.Time { return *clock }
	return svc, clock
}

func TestBindTableNormalizesAndOverwrites(t *testing.T) {
	svc, _ := newTableServiceForTest(t, 0)
	ctx := context.Background()

	binding, err := svc.BindTable(ctx, "s1", "r1", " 07 ")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if binding.TableNumber != "7" || binding.ExpiresAt != nil {
		t.Fatalf("unexpected binding: %+v", binding)
	}
	if _, err := svc.BindTable(ctx, "s1", "r1", "9"); err != nil {
		t.Fatalf("rebind failed: %v", err)
	}
	number, ok, err := svc.GetTableNumber(ctx, "s1", "r1")
	if err != nil || !ok || number != "9" {
		t.Fatalf("expected overwritten table 9, got %q ok=%v err=%v", number, ok, err)
	}
}

func TestBindTableRejectsInvalid(t *testing.T) {
	svc, _ := newTableServiceForTest(t, 0)
	for _, raw := range []string{"", "abc", "0", "-3"} {
		if _, err := svc.BindTable(context.Background(), "s1", "r1", raw); !errors.Is(err, ErrTableNumberInvalid) {
			t.Fatalf("expected ErrTableNumberInvalid for %q, got %v", raw, err)
		}
	}
}

func TestTableBindingTTL(t *testing.T) {
	svc, clock := newTableServiceForTest(t, time.Hour)
	ctx := context.Background()

	binding, err := svc.BindTable(ctx, "s1", "r1", "4")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if binding.ExpiresAt == nil {
		t.Fatalf("expected expiry to be set")
	}
	*clock = clock.Add(61 * time.Minute)
	if _, ok, _ := svc.GetTableNumber(ctx, "s1", "r1"); ok {
		t.Fatalf("expected binding expired")
	}
}

func TestExpireTableIgnoresRebind(t *testing.T) {
	svc, clock := newTableServiceForTest(t, 0)
	ctx := context.Background()

	first, _ := svc.BindTable(ctx, "s1", "r1", "4")
	*clock = clock.Add(time.Minute)
	_, _ = svc.BindTable(ctx, "s1", "r1", "5")

	removed, err := svc.ExpireTable(ctx, "s1", "r1", first.BoundAt)
	if err != nil || removed {
		t.Fatalf("stale expire must be ignored, removed=%v err=%v", removed, err)
	}
	current, _ := svc.GetBinding(ctx, "s1", "r1")
	removed, err = svc.ExpireTable(ctx, "s1", "r1", current.BoundAt)
	if err != nil || !removed {
		t.Fatalf("expected removal, removed=%v err=%v", removed, err)
	}
}
