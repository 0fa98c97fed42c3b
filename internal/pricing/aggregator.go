package pricing

import "github.com/shopspring/decimal"

// Aggregation holds the intermediate cascade totals at full precision.
type Aggregation struct {
	SubtotalFOBUSD          decimal.Decimal
	TariffTotalUSD          decimal.Decimal
	SubtotalBeforeMarginCOP decimal.Decimal
}

// Aggregate sums line totals into the FOB subtotal, folds in tariffs
// and quotation-level costs, and converts to the national currency:
//
//	subtotal_before_margin_cop =
//	    (fob + tariff + freight_intl + inspection + insurance) × rate
//	    + freight_national_cop + nationalization_cop
//
// Lines are summed left to right; addition over decimals makes the
// result independent of line order.
func Aggregate(in Input) (*Aggregation, error) {
	if !in.ExchangeRate.IsPositive() {
		return nil, ErrInvalidExchangeRate
	}

	subtotal := decimal.Zero
	tariff := decimal.Zero
	percentBase := decimal.Zero

	for _, l := range in.Lines {
		total, err := LineTotal(l)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(total)

		t, quotationPercentApplies := lineTariff(l, total)
		tariff = tariff.Add(t)
		if quotationPercentApplies {
			percentBase = percentBase.Add(total)
		}
	}

	if in.TariffPercent.IsPositive() {
		tariff = tariff.Add(percentBase.Mul(in.TariffPercent).Div(oneHundred))
	}

	landedUSD := subtotal.
		Add(tariff).
		Add(in.FreightIntlUSD).
		Add(in.InspectionUSD).
		Add(in.InsuranceUSD)

	subtotalCOP := landedUSD.Mul(in.ExchangeRate).
		Add(in.FreightNationalCOP).
		Add(in.NationalizationCOP)

	return &Aggregation{
		SubtotalFOBUSD:          subtotal,
		TariffTotalUSD:          tariff,
		SubtotalBeforeMarginCOP: subtotalCOP,
	}, nil
}
