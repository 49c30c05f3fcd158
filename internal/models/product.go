package models

// Product 菜单商品（来自上游门店接口的只读快照，不落库）
type Product struct {
	ID          string  `json:"id"`                 // 商品ID
	Name        string  `json:"name"`               // 名称
	Description string  `json:"description"`        // 描述
	Price       Money   `json:"price"`              // 单价
	Image       *string `json:"image,omitempty"`    // 图片地址（可选）
	Category    string  `json:"category"`           // 分类名称
	IsAvailable bool    `json:"isAvailable"`        // 是否可售
	Quantity    *int    `json:"quantity,omitempty"` // 库存数量（可选）
}

// ProductIndex 按 ID 索引商品
func ProductIndex(products []Product) map[string]Product {
	index := make(map[string]Product, len(products))
	for _, product := range products {
		index[product.ID] = product
	}
	return index
}
