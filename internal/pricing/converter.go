package pricing

import "github.com/shopspring/decimal"

// ApplyMargin applies a margin percentage on top of the pre-margin
// subtotal. A negative margin is deliberately not rejected here: a
// caller may model a loss-leader; warning about it is a presentation
// concern.
func ApplyMargin(subtotal, marginPercent decimal.Decimal) (margin, total decimal.Decimal) {
	margin = subtotal.Mul(marginPercent).Div(oneHundred)
	total = subtotal.Add(margin)
	return margin, total
}

// GrandTotal computes the persisted quote-currency invariant:
//
//	grand_total = (subtotal + freight + insurance + other) × (1 − discount/100)
//
// rounded half-up to 2 decimal places. Returns the discount amount and
// the grand total.
func GrandTotal(subtotal, freight, insurance, other, discountPercent decimal.Decimal) (discount, grand decimal.Decimal) {
	base := subtotal.Add(freight).Add(insurance).Add(other)
	discount = base.Mul(discountPercent).Div(oneHundred)
	grand = base.Sub(discount)
	return discount.Round(2), grand.Round(2)
}
