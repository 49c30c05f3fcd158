// Package upstream 封装餐厅 REST 服务（菜单、下单、请求买单）。
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerAPIKey         = "X-API-Key"
	defaultTimeout       = 10 * time.Second
)

// StatusError 上游返回非 2xx
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("upstream status %d: %s", e.Code, body)
}

// IsStatus 判断错误是否为指定上游状态码
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == code
	}
	return false
}

// OrderItem 下单商品行，金额以数字发送
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderLine 上游返回的订单行
type OrderLine struct {
	ProductID string       `json:"productId"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unitPrice"`
}

// GuestInfo 访客信息
type GuestInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// CreateOrderRequest 下单请求体
type CreateOrderRequest struct {
	RestaurantUnitID string      `json:"restaurantUnitId"`
	Items            []OrderItem `json:"items"`
	TotalAmount      float64     `json:"totalAmount"`
	Observations     string      `json:"observations"`
	OrderType        string      `json:"orderType"`
	TableNumber      int         `json:"tableNumber"`
	SplitCount       int         `json:"splitCount"`
	IsGuest          bool        `json:"isGuest,omitempty"`
	GuestInfo        *GuestInfo  `json:"guestInfo,omitempty"`
	IdempotencyKey   string      `json:"idempotencyKey"`
}

// OrderResponse 下单结果
type OrderResponse struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	TotalAmount models.Money `json:"totalAmount"`
	Items       []OrderLine  `json:"items"`
}

// FinalizeRequest 请求买单
type FinalizeRequest struct {
	RestaurantUnitID string `json:"restaurantUnitId"`
	TableNumber      int    `json:"tableNumber"`
	SplitCount       int    `json:"splitCount"`
}

// Client 餐厅 REST 客户端
type Client struct {
	http *resty.Client
	cfg  config.UpstreamConfig
}

// New 创建客户端，出站请求携带 trace 上下文
func New(cfg config.UpstreamConfig) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")).
		SetTimeout(timeout).
		SetTransport(telemetry.Transport(http.DefaultTransport)).
		SetHeader("Accept", "application/json")
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		httpClient.SetHeader(headerAPIKey, key)
	}
	return &Client{http: httpClient, cfg: cfg}
}

func (c *Client) path(raw, fallback string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		p = fallback
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// LoadCatalog 拉取门店菜单
func (c *Client) LoadCatalog(ctx context.Context, restaurantID string) ([]models.Product, error) {
	var products []models.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", restaurantID).
		SetResult(&products).
		Get(c.path(c.cfg.ProductsPath, "/restaurant/{id}/products"))
	if err != nil {
		return nil, fmt.Errorf("load catalog failed: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// CreateOrder 提交订单，幂等键同时放在请求头和请求体
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	var result OrderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(headerIdempotencyKey, req.IdempotencyKey).
		SetBody(req).
		SetResult(&result).
		Post(c.path(c.cfg.CreateOrderPath, "/order/create"))
	if err != nil {
		return nil, fmt.Errorf("create order failed: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}
	return &result, nil
}

// FinalizeBill 请求买单
func (c *Client) FinalizeBill(ctx context.Context, req FinalizeRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.path(c.cfg.FinalizePath, "/order/finalize"))
	if err != nil {
		return fmt.Errorf("finalize bill failed: %w", err)
	}
	if resp.IsError() {
		return &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
