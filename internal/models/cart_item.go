package models

import "time"

// CartItem 购物车项，同一门店范围内每个商品最多一条
type CartItem struct {
	ProductID string `json:"productId"` // 商品ID
	Quantity  int    `json:"quantity"`  // 数量（>0）
}

// TableBinding 会话与门店桌号的绑定
type TableBinding struct {
	RestaurantScope string     `json:"restaurantScope"`     // 门店范围（门店ID）
	TableNumber     string     `json:"tableNumber"`         // 桌号
	BoundAt         time.Time  `json:"boundAt"`             // 绑定时间
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"` // 过期时间（为空表示不过期）
}

// CatalogSnapshot 会话内的菜单快照
type CatalogSnapshot struct {
	RestaurantID string    `json:"restaurantId"`
	Products     []Product `json:"products"`
	LoadedAt     time.Time `json:"loadedAt"`
}

// CheckoutState 下单/买单状态机快照
type CheckoutState struct {
	OrderPhase         string     `json:"orderPhase"`
	BillPhase          string     `json:"billPhase"`
	LastError          string     `json:"lastError,omitempty"`
	OrderID            string     `json:"orderId,omitempty"`
	OrderStatus        string     `json:"orderStatus,omitempty"`
	PendingKey         string     `json:"pendingKey,omitempty"`
	PendingFingerprint string     `json:"pendingFingerprint,omitempty"`
	RevertAt           *time.Time `json:"revertAt,omitempty"`
	RedirectURL        string     `json:"redirectUrl,omitempty"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
