package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/id"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestComputeTotals_ExplicitTax(t *testing.T) {
	// cart = [{A, qty 2, price 100, discount 0}], discount 0, tax 36
	lines := []PricedLine{{ProductID: id.New(), Quantity: 2, UnitPrice: dec("100"), Discount: decPtr("0"), Tax: decPtr("0")}}

	got := ComputeTotals(lines, decPtr("0"), decPtr("36"), dec("18"))

	assert.Equal(t, "200", got.Subtotal.String())
	assert.Equal(t, "236", got.Total.String())
	assert.True(t, got.Total.Equal(got.Subtotal.Sub(got.Discount).Add(got.Tax)))
}

func TestComputeTotals_DefaultsFromItems(t *testing.T) {
	a, b := id.New(), id.New()
	lines := []PricedLine{
		{ProductID: a, Quantity: 2, UnitPrice: dec("100"), Discount: decPtr("10")},
		{ProductID: b, Quantity: 3, UnitPrice: dec("19.99")},
	}

	got := ComputeTotals(lines, nil, nil, dec("18"))
	require.Len(t, got.Items, 2)

	// line 1: 200 - 10 = 190, tax 34.20, total 224.20
	assert.Equal(t, "34.2", got.Items[0].Tax.String())
	assert.Equal(t, "224.2", got.Items[0].TotalPrice.String())
	// line 2: 59.97, tax 10.79 (10.7946 rounded), total 70.76
	assert.Equal(t, "10.79", got.Items[1].Tax.String())
	assert.Equal(t, "70.76", got.Items[1].TotalPrice.String())

	assert.Equal(t, "259.97", got.Subtotal.String())
	assert.Equal(t, "10", got.Discount.String())
	assert.Equal(t, "44.99", got.Tax.String())
	assert.Equal(t, "294.96", got.Total.String())

	itemSum := decimal.Zero
	for _, it := range got.Items {
		itemSum = itemSum.Add(it.TotalPrice)
		assert.True(t, it.TotalPrice.Equal(dec("0").Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))).Sub(it.Discount).Add(it.Tax)))
	}
	assert.True(t, itemSum.Equal(got.Total), "line totals must add up to the bill total when bill discount and tax are derived")
	assert.Equal(t, 1, got.Items[0].LineNo)
	assert.Equal(t, 2, got.Items[1].LineNo)
}

func TestComputeTotals_ZeroTaxRate(t *testing.T) {
	lines := []PricedLine{{ProductID: id.New(), Quantity: 1, UnitPrice: dec("49.50")}}

	got := ComputeTotals(lines, nil, nil, decimal.Zero)
	assert.Equal(t, "49.5", got.Total.String())
	assert.True(t, got.Tax.IsZero())
}

func TestQuantitiesByProduct(t *testing.T) {
	a, b := id.New(), id.New()
	items := []ItemInput{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 1}, {ProductID: a, Quantity: 3}}

	assert.Equal(t, map[id.ID]int{a: 5, b: 1}, QuantitiesByProduct(items))
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, StatusPaid, DerivePaymentStatus(dec("100"), dec("100")))
	assert.Equal(t, StatusPaid, DerivePaymentStatus(dec("100"), dec("150")))
	assert.Equal(t, StatusPartial, DerivePaymentStatus(dec("100"), dec("40")))
	assert.Equal(t, StatusUnpaid, DerivePaymentStatus(dec("100"), dec("0")))
}
