// Package pricing implements the quotation pricing engine: line item
// valuation, the cost cascade from FOB subtotal to a landed national
// total, and margin plus currency conversion. The package is pure:
// no I/O, no clock reads besides the snapshot timestamp, and
// deterministic output for identical input.
//
// All monetary arithmetic is carried on decimal.Decimal at full
// precision; rounding to 2 decimal places (half-up) happens once per
// output field when the snapshot is assembled.
package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned when a line quantity is below 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrNegativeUnitPrice is returned when a unit price (or override) is negative
	ErrNegativeUnitPrice = errors.New("unit price must not be negative")

	// ErrInvalidExchangeRate is returned when the exchange rate is zero
	// or negative. A non-positive rate would silently zero or invert
	// every downstream total, which must never pass silently.
	ErrInvalidExchangeRate = errors.New("exchange rate must be greater than zero")

	// ErrAmountOutOfRange is returned when a computed amount exceeds
	// the numeric(15,2) capacity of the persistence layer
	ErrAmountOutOfRange = errors.New("computed amount exceeds the storable range")
)

// maxStorableAmount mirrors the numeric(15,2) columns: 13 integer digits.
var maxStorableAmount = decimal.New(1, 13)

var (
	oneHundred = decimal.NewFromInt(100)
)

// Line is a single quotation line as seen by the engine.
type Line struct {
	Quantity int
	// UnitPrice is the listed catalog price.
	UnitPrice decimal.Decimal
	// UnitPriceOverride, when set, replaces UnitPrice for total
	// computation. The listed price is retained for margin reporting
	// and does not enter the cascade.
	UnitPriceOverride *decimal.Decimal
	// TariffPercent applies to the line total when no explicit
	// TariffAmount is set.
	TariffPercent decimal.Decimal
	// TariffAmount, when positive, wins over any percent-based tariff
	// for this line to avoid double counting.
	TariffAmount  decimal.Decimal
	FreightAmount decimal.Decimal
}

// Input carries everything a calculation needs. Freight-national and
// nationalization amounts are externally supplied by the freight-rate
// collaborator; the engine treats them as given, zero meaning no local
// customs clearance.
type Input struct {
	Lines []Line

	// Quotation-level costs, in the source (USD-like) currency.
	FreightIntlUSD decimal.Decimal
	InspectionUSD  decimal.Decimal
	InsuranceUSD   decimal.Decimal
	// TariffPercent applies to the portion of the subtotal contributed
	// by lines that carry neither an explicit amount nor a line percent.
	TariffPercent decimal.Decimal

	ExchangeRate decimal.Decimal

	// Destination-currency inputs from the freight-rate lookup.
	FreightNationalCOP decimal.Decimal
	NationalizationCOP decimal.Decimal

	MarginPercent decimal.Decimal
}

// Quote is the immutable result of one calculation. A new calculation
// supersedes it; it is never mutated in place. ComputedAt is excluded
// from any equality comparison between snapshots.
type Quote struct {
	SubtotalFOBUSD          decimal.Decimal `json:"subtotalFobUsd"`
	TariffTotalUSD          decimal.Decimal `json:"tariffTotalUsd"`
	FreightIntlUSD          decimal.Decimal `json:"freightIntlUsd"`
	InspectionUSD           decimal.Decimal `json:"inspectionUsd"`
	InsuranceUSD            decimal.Decimal `json:"insuranceUsd"`
	ExchangeRate            decimal.Decimal `json:"exchangeRate"`
	FreightNationalCOP      decimal.Decimal `json:"freightNationalCop"`
	NationalizationCOP      decimal.Decimal `json:"nationalizationCop"`
	SubtotalBeforeMarginCOP decimal.Decimal `json:"subtotalBeforeMarginCop"`
	MarginPercent           decimal.Decimal `json:"marginPercent"`
	MarginCOP               decimal.Decimal `json:"marginCop"`
	TotalCOP                decimal.Decimal `json:"totalCop"`
	ComputedAt              time.Time       `json:"computedAt"`
}

// Calculate runs the full cascade: valuation, aggregation, margin and
// conversion. Lines are processed in slice order; the result is
// independent of that order.
func Calculate(in Input) (*Quote, error) {
	agg, err := Aggregate(in)
	if err != nil {
		return nil, err
	}

	subtotalCOP := agg.SubtotalBeforeMarginCOP
	marginCOP, totalCOP := ApplyMargin(subtotalCOP, in.MarginPercent)

	q := &Quote{
		SubtotalFOBUSD:          agg.SubtotalFOBUSD.Round(2),
		TariffTotalUSD:          agg.TariffTotalUSD.Round(2),
		FreightIntlUSD:          in.FreightIntlUSD.Round(2),
		InspectionUSD:           in.InspectionUSD.Round(2),
		InsuranceUSD:            in.InsuranceUSD.Round(2),
		ExchangeRate:            in.ExchangeRate,
		FreightNationalCOP:      in.FreightNationalCOP.Round(2),
		NationalizationCOP:      in.NationalizationCOP.Round(2),
		SubtotalBeforeMarginCOP: subtotalCOP.Round(2),
		MarginPercent:           in.MarginPercent,
		MarginCOP:               marginCOP.Round(2),
		TotalCOP:                totalCOP.Round(2),
		ComputedAt:              time.Now().UTC(),
	}

	for _, amount := range []decimal.Decimal{q.SubtotalBeforeMarginCOP, q.MarginCOP, q.TotalCOP} {
		if amount.Abs().GreaterThanOrEqual(maxStorableAmount) {
			return nil, ErrAmountOutOfRange
		}
	}

	return q, nil
}
