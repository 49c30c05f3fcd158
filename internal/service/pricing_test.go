package service

import (
	"fmt"
	"testing"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, value string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(value)
	require.NoError(t, err)
	return m
}

func burgerCatalog(t *testing.T) []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Burger", Price: mustMoney(t, "25.90"), Category: "Mains", IsAvailable: true},
		{ID: "p2", Name: "Soda", Price: mustMoney(t, "6.50"), Category: "Drinks", IsAvailable: true},
		{ID: "p3", Name: "Sold out pie", Price: mustMoney(t, "12.00"), Category: "Desserts", IsAvailable: false},
	}
}

func TestComputeTotalsLocalScenario(t *testing.T) {
	items := []models.CartItem{{ProductID: "p1", Quantity: 2}}
	totals, err := ComputeTotals(items, burgerCatalog(t), constants.OrderTypeLocal, 1)
	require.NoError(t, err)
	assert.Equal(t, "51.80", totals.Subtotal.String())
	assert.Equal(t, "5.18", totals.ServiceFee.String())
	assert.Equal(t, "56.98", totals.Total.String())
	assert.Equal(t, "56.98", totals.PerPerson.String())
	require.Len(t, totals.Shares, 1)
	assert.Equal(t, "56.98", totals.Shares[0].String())
}

func TestComputeTotalsTakeawayScenario(t *testing.T) {
	items := []models.CartItem{{ProductID: "p1", Quantity: 2}}
	totals, err := ComputeTotals(items, burgerCatalog(t), constants.OrderTypeTakeaway, 1)
	require.NoError(t, err)
	assert.Equal(t, "51.80", totals.Subtotal.String())
	assert.True(t, totals.ServiceFee.IsZero())
	assert.Equal(t, "51.80", totals.Total.String())
}

func TestComputeTotalsSplitThree(t *testing.T) {
	items := []models.CartItem{{ProductID: "p1", Quantity: 2}}
	totals, err := ComputeTotals(items, burgerCatalog(t), constants.OrderTypeLocal, 3)
	require.NoError(t, err)
	assert.Equal(t, "56.98", totals.Total.String())
	assert.Equal(t, "18.99", totals.PerPerson.String())
	require.Len(t, totals.Shares, 3)
	assert.Equal(t, "18.99", totals.Shares[0].String())
	assert.Equal(t, "18.99", totals.Shares[1].String())
	assert.Equal(t, "19.00", totals.Shares[2].String())

	sum := decimal.Zero
	for _, share := range totals.Shares {
		sum = sum.Add(share.Decimal)
	}
	assert.True(t, sum.Equal(totals.Total.Decimal), "shares must add up to total, got %s", sum)
}

func TestComputeTotalsDropsUnknownAndUnavailable(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "gone", Quantity: 4},
		{ProductID: "p3", Quantity: 2},
	}
	totals, err := ComputeTotals(items, burgerCatalog(t), constants.OrderTypeTakeaway, 1)
	require.NoError(t, err)
	assert.Equal(t, "25.90", totals.Subtotal.String())
	assert.ElementsMatch(t, []string{"gone", "p3"}, totals.DroppedProductIDs)
	require.Len(t, totals.Lines, 1)
	assert.Equal(t, "p1", totals.Lines[0].ProductID)
}

func TestComputeTotalsRejectsInvalidInput(t *testing.T) {
	_, err := ComputeTotals(nil, nil, constants.OrderTypeLocal, 0)
	assert.ErrorIs(t, err, ErrSplitCountInvalid)

	_, err = ComputeTotals(nil, nil, "delivery", 1)
	assert.ErrorIs(t, err, ErrOrderTypeInvalid)
}

func TestComputeTotalsProperties(t *testing.T) {
	catalog := burgerCatalog(t)
	carts := [][]models.CartItem{
		nil,
		{{ProductID: "p1", Quantity: 1}},
		{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 7}},
		{{ProductID: "p2", Quantity: 13}, {ProductID: "p3", Quantity: 1}},
	}
	for i, cart := range carts {
		for _, orderType := range []string{constants.OrderTypeLocal, constants.OrderTypeTakeaway} {
			for _, split := range []int{1, 2, 3, 7} {
				name := fmt.Sprintf("cart%d_%s_split%d", i, orderType, split)
				t.Run(name, func(t *testing.T) {
					first, err := ComputeTotals(cart, catalog, orderType, split)
					require.NoError(t, err)
					second, err := ComputeTotals(cart, catalog, orderType, split)
					require.NoError(t, err)
					assert.Equal(t, first, second, "computeTotals must be deterministic")

					assert.True(t, first.Total.Decimal.Equal(first.Subtotal.Decimal.Add(first.ServiceFee.Decimal)))
					if orderType == constants.OrderTypeLocal {
						expected := first.Subtotal.Decimal.Mul(decimal.NewFromFloat(0.10))
						assert.True(t, first.ServiceFee.Decimal.Sub(expected).Abs().LessThanOrEqual(decimal.NewFromFloat(0.005)))
					} else {
						assert.True(t, first.ServiceFee.IsZero())
					}
					if split == 1 {
						assert.True(t, first.PerPerson.Decimal.Equal(first.Total.Decimal))
					} else {
						exact := first.Total.Decimal.Div(decimal.NewFromInt(int64(split)))
						assert.True(t, first.PerPerson.Decimal.Sub(exact).Abs().LessThanOrEqual(decimal.NewFromFloat(0.005)))
					}
					require.Len(t, first.Shares, split)
				})
			}
		}
	}
}

func TestSplitSharesEdgeCases(t *testing.T) {
	assert.Nil(t, SplitShares(decimal.NewFromInt(10), 0))
	shares := SplitShares(decimal.RequireFromString("10.00"), 3)
	require.Len(t, shares, 3)
	assert.Equal(t, "3.33", shares[0].StringFixed(2))
	assert.Equal(t, "3.34", shares[2].StringFixed(2))
}

func TestNormalizeOrderType(t *testing.T) {
	got, err := NormalizeOrderType(" Takeaway ")
	require.NoError(t, err)
	assert.Equal(t, constants.OrderTypeTakeaway, got)

	got, err = NormalizeOrderType("")
	require.NoError(t, err)
	assert.Equal(t, constants.OrderTypeLocal, got)
}
