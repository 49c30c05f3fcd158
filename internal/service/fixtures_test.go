package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/store"
	"github.com/comanda-next/internal/upstream"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeCatalogLoader struct {
	mu       sync.Mutex
	products []models.Product
	err      error
	calls    int
}

func (f *fakeCatalogLoader) LoadCatalog(_ context.Context, _ string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

type fakeGateway struct {
	mu            sync.Mutex
	createErr     error
	finalizeErr   error
	createCalls   []upstream.CreateOrderRequest
	finalizeCalls []upstream.FinalizeRequest
	onCreate      func()
}

func (f *fakeGateway) CreateOrder(_ context.Context, req upstream.CreateOrderRequest) (*upstream.OrderResponse, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	total, _ := models.NewMoneyFromString(fmt.Sprintf("%.2f", req.TotalAmount))
	return &upstream.OrderResponse{
		ID:          fmt.Sprintf("order-%d", len(f.createCalls)),
		Status:      "received",
		TotalAmount: total,
	}, nil
}

func (f *fakeGateway) FinalizeBill(_ context.Context, req upstream.FinalizeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizeCalls = append(f.finalizeCalls, req)
	return f.finalizeErr
}

type checkoutFixture struct {
	kv       *store.MemoryStore
	db       *gorm.DB
	loader   *fakeCatalogLoader
	gateway  *fakeGateway
	cart     *CartService
	catalog  *CatalogService
	table    *TableService
	checkout *CheckoutService
	clock    *time.Time
}

func newCheckoutFixture(t *testing.T, opts CheckoutOptions) *checkoutFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}

	now := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
	clock := &now
	nowFn := func() time.Time { return *clock }

	kv := store.NewMemoryStore()
	loader := &fakeCatalogLoader{products: []models.Product{
		{ID: "p1", Name: "Burger", Price: models.NewMoneyFromDecimal(mustDecimal("25.90")), Category: "Mains", IsAvailable: true},
		{ID: "p2", Name: "Lemonade", Description: "Fresh lemons", Price: models.NewMoneyFromDecimal(mustDecimal("7.00")), Category: "Drinks", IsAvailable: true},
		{ID: "p3", Name: "Cheesecake", Price: models.NewMoneyFromDecimal(mustDecimal("12.00")), Category: "Desserts", IsAvailable: false},
	}}
	gateway := &fakeGateway{}

	cart := NewCartService(repository.NewCartRepository(kv))
	catalog := NewCatalogService(repository.NewCatalogRepository(kv), loader, 0, 0)
	catalog.now = nowFn
	table := NewTableService(repository.NewTableRepository(kv), queueClient, 0)
	table.now = nowFn
	checkout := NewCheckoutService(
		repository.NewCheckoutStateRepository(kv),
		repository.NewOrderSubmissionRepository(db),
		cart,
		catalog,
		table,
		gateway,
		queueClient,
		opts,
	)
	checkout.now = nowFn

	return &checkoutFixture{
		kv:       kv,
		db:       db,
		loader:   loader,
		gateway:  gateway,
		cart:     cart,
		catalog:  catalog,
		table:    table,
		checkout: checkout,
		clock:    clock,
	}
}

func (f *checkoutFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

var errUpstreamDown = errors.New("upstream status 502: bad gateway")
