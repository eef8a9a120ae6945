package billing

import (
	"github.com/shopspring/decimal"

	"shoppos/internal/core/id"
	"shoppos/internal/core/types"
)

// PricedLine is a cart line with its unit price resolved.
type PricedLine struct {
	ProductID id.ID
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  *decimal.Decimal
	Tax       *decimal.Decimal
}

// Totals is the computed money breakdown of a bill.
type Totals struct {
	Items    []*BillItem
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals applies the bill arithmetic:
//
//	subtotal   = Σ quantity*unit_price
//	item_total = quantity*unit_price - item_discount + item_tax
//	total      = subtotal - discount + tax
//
// An absent item tax is taxRate percent of the discounted line amount.
// An absent bill discount or tax is the sum over the items.
func ComputeTotals(lines []PricedLine, discount, tax *decimal.Decimal, taxRate decimal.Decimal) Totals {
	t := Totals{
		Items:    make([]*BillItem, 0, len(lines)),
		Subtotal: decimal.Zero,
	}
	itemDiscounts := decimal.Zero
	itemTaxes := decimal.Zero

	for i, line := range lines {
		unitPrice := types.Round(line.UnitPrice)
		amount := types.LineAmount(line.Quantity, unitPrice)

		itemDiscount := decimal.Zero
		if line.Discount != nil {
			itemDiscount = types.Round(*line.Discount)
		}

		var itemTax decimal.Decimal
		if line.Tax != nil {
			itemTax = types.Round(*line.Tax)
		} else {
			itemTax = types.Percent(amount.Sub(itemDiscount), taxRate)
		}

		t.Items = append(t.Items, &BillItem{
			ID:         id.New(),
			LineNo:     i + 1,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			Discount:   itemDiscount,
			Tax:        itemTax,
			TotalPrice: amount.Sub(itemDiscount).Add(itemTax),
		})

		t.Subtotal = t.Subtotal.Add(amount)
		itemDiscounts = itemDiscounts.Add(itemDiscount)
		itemTaxes = itemTaxes.Add(itemTax)
	}

	t.Discount = itemDiscounts
	if discount != nil {
		t.Discount = types.Round(*discount)
	}
	t.Tax = itemTaxes
	if tax != nil {
		t.Tax = types.Round(*tax)
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax)
	return t
}

// QuantitiesByProduct sums line quantities per product, so duplicate cart
// lines are checked against stock together.
func QuantitiesByProduct(items []ItemInput) map[id.ID]int {
	out := make(map[id.ID]int, len(items))
	for _, item := range items {
		out[item.ProductID] += item.Quantity
	}
	return out
}
