package pricing_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// =============================================================================
// Line Item Valuator
// =============================================================================

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		line     pricing.Line
		expected string
		wantErr  error
	}{
		{"simple quantity times price", pricing.Line{Quantity: 10, UnitPrice: d("5.00")}, "50.00", nil},
		{"quantity of one", pricing.Line{Quantity: 1, UnitPrice: d("19.99")}, "19.99", nil},
		{"zero price is allowed", pricing.Line{Quantity: 3, UnitPrice: d("0")}, "0", nil},
		{"override replaces listed price", pricing.Line{Quantity: 4, UnitPrice: d("10.00"), UnitPriceOverride: dp("7.50")}, "30.00", nil},
		{"zero quantity rejected", pricing.Line{Quantity: 0, UnitPrice: d("5.00")}, "", pricing.ErrInvalidQuantity},
		{"negative quantity rejected", pricing.Line{Quantity: -2, UnitPrice: d("5.00")}, "", pricing.ErrInvalidQuantity},
		{"negative price rejected", pricing.Line{Quantity: 2, UnitPrice: d("-1.00")}, "", pricing.ErrNegativeUnitPrice},
		{"negative override rejected", pricing.Line{Quantity: 2, UnitPrice: d("5.00"), UnitPriceOverride: dp("-0.01")}, "", pricing.ErrNegativeUnitPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := pricing.LineTotal(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, total.Equal(d(tt.expected)), "got %s, want %s", total, tt.expected)
		})
	}
}

func TestLineTotal_OverrideDoesNotMutateListedPrice(t *testing.T) {
	line := pricing.Line{Quantity: 2, UnitPrice: d("100.00"), UnitPriceOverride: dp("80.00")}

	total, err := pricing.LineTotal(line)
	require.NoError(t, err)

	assert.True(t, total.Equal(d("160.00")))
	assert.True(t, line.UnitPrice.Equal(d("100.00")), "listed price must be retained for margin reporting")
}

// =============================================================================
// Cost Aggregator
// =============================================================================

func TestAggregate_SubtotalIsSumOfLineTotals(t *testing.T) {
	in := pricing.Input{
		Lines: []pricing.Line{
			{Quantity: 10, UnitPrice: d("5.00")},
			{Quantity: 3, UnitPrice: d("12.50")},
			{Quantity: 1, UnitPrice: d("0.99")},
		},
		ExchangeRate: d("4000"),
	}

	agg, err := pricing.Aggregate(in)
	require.NoError(t, err)
	assert.True(t, agg.SubtotalFOBUSD.Equal(d("88.49")))
}

func TestAggregate_OrderIndependent(t *testing.T) {
	lines := []pricing.Line{
		{Quantity: 7, UnitPrice: d("3.33"), TariffPercent: d("5")},
		{Quantity: 2, UnitPrice: d("99.99"), TariffAmount: d("4.00")},
		{Quantity: 13, UnitPrice: d("0.07")},
	}
	reversed := []pricing.Line{lines[2], lines[1], lines[0]}

	a, err := pricing.Aggregate(pricing.Input{Lines: lines, TariffPercent: d("2"), ExchangeRate: d("4100.5")})
	require.NoError(t, err)
	b, err := pricing.Aggregate(pricing.Input{Lines: reversed, TariffPercent: d("2"), ExchangeRate: d("4100.5")})
	require.NoError(t, err)

	assert.True(t, a.SubtotalFOBUSD.Equal(b.SubtotalFOBUSD))
	assert.True(t, a.TariffTotalUSD.Equal(b.TariffTotalUSD))
	assert.True(t, a.SubtotalBeforeMarginCOP.Equal(b.SubtotalBeforeMarginCOP))
}

func TestAggregate_ExplicitTariffAmountWinsOverPercent(t *testing.T) {
	// One line with explicit amount, one with line percent, one picking
	// up the quotation-level percent. No double counting anywhere.
	in := pricing.Input{
		Lines: []pricing.Line{
			{Quantity: 1, UnitPrice: d("100.00"), TariffAmount: d("7.00"), TariffPercent: d("50")},
			{Quantity: 1, UnitPrice: d("200.00"), TariffPercent: d("10")},
			{Quantity: 1, UnitPrice: d("300.00")},
		},
		TariffPercent: d("5"),
		ExchangeRate:  d("1"),
	}

	agg, err := pricing.Aggregate(in)
	require.NoError(t, err)

	// 7.00 explicit + 20.00 line percent + 15.00 quotation percent
	assert.True(t, agg.TariffTotalUSD.Equal(d("42.00")), "got %s", agg.TariffTotalUSD)
}

func TestAggregate_InvalidExchangeRate(t *testing.T) {
	for _, rate := range []string{"0", "-1", "-4000"} {
		_, err := pricing.Aggregate(pricing.Input{
			Lines:        []pricing.Line{{Quantity: 1, UnitPrice: d("10")}},
			ExchangeRate: d(rate),
		})
		assert.ErrorIs(t, err, pricing.ErrInvalidExchangeRate, "rate %s must never produce a total", rate)
	}
}

func TestAggregate_NationalCostsAreAddedAfterConversion(t *testing.T) {
	in := pricing.Input{
		Lines:              []pricing.Line{{Quantity: 2, UnitPrice: d("50.00")}},
		FreightIntlUSD:     d("10.00"),
		InspectionUSD:      d("5.00"),
		InsuranceUSD:       d("3.00"),
		ExchangeRate:       d("4000"),
		FreightNationalCOP: d("120000.00"),
		NationalizationCOP: d("80000.00"),
	}

	agg, err := pricing.Aggregate(in)
	require.NoError(t, err)

	// (100 + 10 + 5 + 3) * 4000 + 120000 + 80000
	assert.True(t, agg.SubtotalBeforeMarginCOP.Equal(d("672000.00")), "got %s", agg.SubtotalBeforeMarginCOP)
}

// =============================================================================
// Margin & Currency Converter
// =============================================================================

func TestApplyMargin(t *testing.T) {
	margin, total := pricing.ApplyMargin(d("200000.00"), d("20"))
	assert.True(t, margin.Equal(d("40000.00")))
	assert.True(t, total.Equal(d("240000.00")))
}

func TestApplyMargin_NegativeMarginIsNotRejected(t *testing.T) {
	margin, total := pricing.ApplyMargin(d("1000.00"), d("-10"))
	assert.True(t, margin.Equal(d("-100.00")))
	assert.True(t, total.Equal(d("900.00")))
}

func TestTotalMonotonicInMargin(t *testing.T) {
	in := pricing.Input{
		Lines:        []pricing.Line{{Quantity: 9, UnitPrice: d("17.45")}},
		ExchangeRate: d("3987.12"),
	}

	prev := decimal.New(-1, 0)
	for _, m := range []string{"0", "5", "10", "17.5", "25", "50", "99", "100"} {
		in.MarginPercent = d(m)
		q, err := pricing.Calculate(in)
		require.NoError(t, err)
		assert.True(t, q.TotalCOP.GreaterThan(prev), "total must increase with margin, got %s at %s%%", q.TotalCOP, m)
		prev = q.TotalCOP
	}
}

func TestGrandTotal(t *testing.T) {
	discount, grand := pricing.GrandTotal(d("1000.00"), d("100.00"), d("50.00"), d("25.00"), d("10"))
	assert.True(t, discount.Equal(d("117.50")))
	assert.True(t, grand.Equal(d("1057.50")))
}

func TestGrandTotal_NoDiscount(t *testing.T) {
	discount, grand := pricing.GrandTotal(d("500.00"), d("0"), d("0"), d("0"), d("0"))
	assert.True(t, discount.IsZero())
	assert.True(t, grand.Equal(d("500.00")))
}

// =============================================================================
// Full cascade
// =============================================================================

// Mirrors the worked reference case: one item, quantity 10 at 5.00 USD,
// no extra costs, margin 20%, rate 4000.
func TestCalculate_ReferenceCase(t *testing.T) {
	in := pricing.Input{
		Lines:         []pricing.Line{{Quantity: 10, UnitPrice: d("5.00")}},
		ExchangeRate:  d("4000"),
		MarginPercent: d("20"),
	}

	q, err := pricing.Calculate(in)
	require.NoError(t, err)

	assert.True(t, q.SubtotalFOBUSD.Equal(d("50.00")), "subtotal: %s", q.SubtotalFOBUSD)
	assert.True(t, q.TariffTotalUSD.IsZero())
	assert.True(t, q.SubtotalBeforeMarginCOP.Equal(d("200000.00")), "pre-margin: %s", q.SubtotalBeforeMarginCOP)
	assert.True(t, q.MarginCOP.Equal(d("40000.00")), "margin: %s", q.MarginCOP)
	assert.True(t, q.TotalCOP.Equal(d("240000.00")), "total: %s", q.TotalCOP)
}

func TestCalculate_Idempotent(t *testing.T) {
	in := pricing.Input{
		Lines: []pricing.Line{
			{Quantity: 4, UnitPrice: d("12.30"), TariffPercent: d("7.5")},
			{Quantity: 11, UnitPrice: d("3.07"), FreightAmount: d("2.00")},
		},
		FreightIntlUSD:     d("45.00"),
		InsuranceUSD:       d("9.99"),
		TariffPercent:      d("3"),
		ExchangeRate:       d("4123.77"),
		FreightNationalCOP: d("55000"),
		NationalizationCOP: d("21000"),
		MarginPercent:      d("18"),
	}

	a, err := pricing.Calculate(in)
	require.NoError(t, err)
	b, err := pricing.Calculate(in)
	require.NoError(t, err)

	assert.True(t, a.SubtotalFOBUSD.Equal(b.SubtotalFOBUSD))
	assert.True(t, a.TariffTotalUSD.Equal(b.TariffTotalUSD))
	assert.True(t, a.SubtotalBeforeMarginCOP.Equal(b.SubtotalBeforeMarginCOP))
	assert.True(t, a.MarginCOP.Equal(b.MarginCOP))
	assert.True(t, a.TotalCOP.Equal(b.TotalCOP))
}

func TestCalculate_RoundingIsHalfUpAtTwoDecimals(t *testing.T) {
	// 3 × 0.015 = 0.045 → rounds to 0.05 at the snapshot edge.
	in := pricing.Input{
		Lines:        []pricing.Line{{Quantity: 3, UnitPrice: d("0.015")}},
		ExchangeRate: d("1"),
	}

	q, err := pricing.Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, "0.05", q.SubtotalBeforeMarginCOP.StringFixed(2))
}

func TestCalculate_OverflowFails(t *testing.T) {
	in := pricing.Input{
		Lines:        []pricing.Line{{Quantity: 1000000, UnitPrice: d("9999999999.99")}},
		ExchangeRate: d("4000"),
	}

	_, err := pricing.Calculate(in)
	assert.ErrorIs(t, err, pricing.ErrAmountOutOfRange)
}

func TestCalculate_PropagatesLineErrors(t *testing.T) {
	_, err := pricing.Calculate(pricing.Input{
		Lines:        []pricing.Line{{Quantity: 0, UnitPrice: d("5")}},
		ExchangeRate: d("4000"),
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)
}
