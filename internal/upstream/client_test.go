package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comanda-next/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogDecodesProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/restaurant/r1/products", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":"p1","name":"Burger","description":"","price":25.9,"category":"Mains","isAvailable":true},
			{"id":"p2","name":"Soda","description":"","price":"5.18","category":"Drinks","isAvailable":false,"quantity":3}
		]`)
	}))
	defer srv.Close()

	client := New(config.UpstreamConfig{BaseURL: srv.URL, APIKey: "secret"})
	products, err := client.LoadCatalog(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "25.90", products[0].Price.StringFixed(2))
	assert.False(t, products[1].IsAvailable)
	require.NotNil(t, products[1].Quantity)
	assert.Equal(t, 3, *products[1].Quantity)
}

func TestLoadCatalogStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	}))
	defer srv.Close()

	client := New(config.UpstreamConfig{BaseURL: srv.URL})
	_, err := client.LoadCatalog(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
}

func TestCreateOrderSendsIdempotencyKey(t *testing.T) {
	var body CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/create", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"o-9","status":"received","totalAmount":"56.98","items":[]}`)
	}))
	defer srv.Close()

	client := New(config.UpstreamConfig{BaseURL: srv.URL})
	resp, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantUnitID: "r1",
		Items:            []OrderItem{{ProductID: "p1", Quantity: 2, UnitPrice: 25.9}},
		TotalAmount:      56.98,
		OrderType:        "local",
		TableNumber:      7,
		SplitCount:       1,
		IdempotencyKey:   "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "o-9", resp.ID)
	assert.Equal(t, "56.98", resp.TotalAmount.String())
	assert.InDelta(t, 56.98, body.TotalAmount, 0.0001)
	assert.Equal(t, "received", resp.Status)
	assert.Equal(t, "key-1", body.IdempotencyKey)
	assert.Equal(t, 7, body.TableNumber)
	assert.Equal(t, "r1", body.RestaurantUnitID)
	assert.Nil(t, body.GuestInfo)
}

func TestFinalizeBillPropagatesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/finalize", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := New(config.UpstreamConfig{BaseURL: srv.URL})
	err := client.FinalizeBill(context.Background(), FinalizeRequest{RestaurantUnitID: "r1", TableNumber: 7, SplitCount: 2})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestNetworkErrorIsNotStatusError(t *testing.T) {
	client := New(config.UpstreamConfig{BaseURL: "http://127.0.0.1:1", TimeoutMS: 200})
	err := client.FinalizeBill(context.Background(), FinalizeRequest{RestaurantUnitID: "r1", TableNumber: 1, SplitCount: 1})
	require.Error(t, err)
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}
