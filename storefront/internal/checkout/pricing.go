package checkout

import "github.com/shopspring/decimal"

// Pricing turns a cart subtotal into the amount charged. The zero value
// charges the subtotal alone.
type Pricing struct {
	// FreeShippingOver waives the fee for subtotals strictly above it.
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
	TaxRate          decimal.Decimal
}

// StorePricing is the storefront's published pricing: 18% GST and a flat
// fee of 5 below a subtotal of 50.
var StorePricing = Pricing{
	FreeShippingOver: decimal.NewFromInt(50),
	ShippingFee:      decimal.NewFromInt(5),
	TaxRate:          decimal.RequireFromString("0.18"),
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func (p Pricing) Totals(subtotal decimal.Decimal) Totals {
	t := Totals{Subtotal: subtotal, Shipping: decimal.Zero, Tax: decimal.Zero}
	if !p.ShippingFee.IsZero() && !subtotal.GreaterThan(p.FreeShippingOver) {
		t.Shipping = p.ShippingFee
	}
	if !p.TaxRate.IsZero() {
		t.Tax = subtotal.Mul(p.TaxRate).Round(2)
	}
	t.Total = subtotal.Add(t.Shipping).Add(t.Tax)
	return t
}
