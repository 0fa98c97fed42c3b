package pricing

import "github.com/shopspring/decimal"

// LineTotal computes a line's extended total: quantity times the
// effective unit price. An explicit override replaces the listed price;
// the listed price itself is never modified. Pure function, no I/O.
func LineTotal(l Line) (decimal.Decimal, error) {
	if l.Quantity < 1 {
		return decimal.Zero, ErrInvalidQuantity
	}

	price := l.UnitPrice
	if l.UnitPriceOverride != nil {
		price = *l.UnitPriceOverride
	}
	if price.IsNegative() {
		return decimal.Zero, ErrNegativeUnitPrice
	}

	return price.Mul(decimal.NewFromInt(int64(l.Quantity))), nil
}

// lineTariff computes the tariff contribution of one line given its
// total. An explicit amount always wins over percent to avoid double
// counting; a line-level percent wins over the quotation-level percent.
// The boolean reports whether the quotation-level percent still applies
// to this line.
func lineTariff(l Line, total decimal.Decimal) (decimal.Decimal, bool) {
	if l.TariffAmount.IsPositive() {
		return l.TariffAmount, false
	}
	if l.TariffPercent.IsPositive() {
		return total.Mul(l.TariffPercent).Div(oneHundred), false
	}
	return decimal.Zero, true
}
