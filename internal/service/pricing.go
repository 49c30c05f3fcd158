package service

import (
	"strings"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"

	"github.com/shopspring/decimal"
)

// PriceLine 计价行
type PriceLine struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unitPrice"`
	LineTotal models.Money `json:"lineTotal"`
}

// Totals 购物车合计
type Totals struct {
	OrderType         string         `json:"orderType"`
	SplitCount        int            `json:"splitCount"`
	Subtotal          models.Money   `json:"subtotal"`
	ServiceFee        models.Money   `json:"serviceFee"`
	Total             models.Money   `json:"total"`
	PerPerson         models.Money   `json:"perPerson"`
	Shares            []models.Money `json:"shares"`
	Lines             []PriceLine    `json:"lines"`
	DroppedProductIDs []string       `json:"droppedProductIds"`
}

// NormalizeOrderType 规范化就餐方式，空值视为堂食
func NormalizeOrderType(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.OrderTypeLocal:
		return constants.OrderTypeLocal, nil
	case constants.OrderTypeTakeaway:
		return constants.OrderTypeTakeaway, nil
	default:
		return "", ErrOrderTypeInvalid
	}
}

// ComputeTotals 计算购物车合计
//
// 只统计能在菜单中找到且可售的商品，其余商品 ID 记入 DroppedProductIDs。
// 堂食收取 10% 服务费，外带不收。分摊时每人金额四舍五入到分，尾差计入最后一份。
func ComputeTotals(items []models.CartItem, products []models.Product, orderType string, splitCount int) (*Totals, error) {
	normalizedType, err := NormalizeOrderType(orderType)
	if err != nil {
		return nil, err
	}
	if splitCount < 1 {
		return nil, ErrSplitCountInvalid
	}

	index := models.ProductIndex(products)
	subtotal := decimal.Zero
	lines := make([]PriceLine, 0, len(items))
	dropped := make([]string, 0)
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		product, ok := index[item.ProductID]
		if !ok || !product.IsAvailable {
			dropped = append(dropped, item.ProductID)
			continue
		}
		lineTotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, PriceLine{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
		})
	}

	subtotal = subtotal.Round(2)
	serviceFee := decimal.Zero
	if normalizedType == constants.OrderTypeLocal {
		serviceFee = subtotal.Mul(constants.ServiceFeeRate).Round(2)
	}
	total := subtotal.Add(serviceFee)

	perPerson := total
	if splitCount > 1 {
		perPerson = total.Div(decimal.NewFromInt(int64(splitCount))).Round(2)
	}

	shares := SplitShares(total, splitCount)
	shareMoney := make([]models.Money, 0, len(shares))
	for _, share := range shares {
		shareMoney = append(shareMoney, models.NewMoneyFromDecimal(share))
	}

	return &Totals{
		OrderType:         normalizedType,
		SplitCount:        splitCount,
		Subtotal:          models.NewMoneyFromDecimal(subtotal),
		ServiceFee:        models.NewMoneyFromDecimal(serviceFee),
		Total:             models.NewMoneyFromDecimal(total),
		PerPerson:         models.NewMoneyFromDecimal(perPerson),
		Shares:            shareMoney,
		Lines:             lines,
		DroppedProductIDs: dropped,
	}, nil
}

// SplitShares 将金额分成 n 份，前 n-1 份为四舍五入后的人均，最后一份吸收尾差
func SplitShares(total decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []decimal.Decimal{total}
	}
	per := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	shares := make([]decimal.Decimal, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		shares[i] = per
		allocated = allocated.Add(per)
	}
	shares[n-1] = total.Sub(allocated)
	return shares
}
