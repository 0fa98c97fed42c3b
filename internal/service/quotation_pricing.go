package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/fx"
	"github.com/DR-Danke/Kompass-sub005/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultQuoteValidityDays = 30

// Calculate runs the pricing engine over an ad-hoc request without
// touching any stored quotation. Used by the calculator endpoint for
// what-if pricing.
func (s *QuotationService) Calculate(ctx context.Context, req *domain.CalculateRequest) (*pricing.Quote, error) {
	rate, err := s.resolveExchangeRate(ctx, req.ExchangeRate)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, len(req.Lines))
	for i, l := range req.Lines {
		line := pricing.Line{
			Quantity:      l.Quantity,
			UnitPrice:     decimal.NewFromFloat(l.UnitPrice),
			TariffPercent: decimal.NewFromFloat(l.TariffPercent),
			TariffAmount:  decimal.NewFromFloat(l.TariffAmount),
			FreightAmount: decimal.NewFromFloat(l.FreightAmount),
		}
		if l.UnitPriceOverride != nil {
			override := decimal.NewFromFloat(*l.UnitPriceOverride)
			line.UnitPriceOverride = &override
		}
		lines[i] = line
	}

	quote, err := pricing.Calculate(pricing.Input{
		Lines:              lines,
		FreightIntlUSD:     decimal.NewFromFloat(req.FreightCost),
		InspectionUSD:      decimal.NewFromFloat(req.InspectionCost),
		InsuranceUSD:       decimal.NewFromFloat(req.InsuranceCost),
		TariffPercent:      decimal.NewFromFloat(req.TariffPercent),
		ExchangeRate:       rate,
		FreightNationalCOP: decimal.NewFromFloat(req.FreightNationalCOP),
		NationalizationCOP: decimal.NewFromFloat(req.NationalizationCOP),
		MarginPercent:      decimal.NewFromFloat(req.MarginPercent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return quote, nil
}

// CalculateForQuotation runs the engine over a stored quotation
// without persisting anything. Optional overrides let callers preview a
// different margin or rate; the saved totals change only on an explicit
// update. Works in terminal states too, as a read-only recompute.
func (s *QuotationService) CalculateForQuotation(ctx context.Context, id uuid.UUID, req *domain.CalculateQuotationRequest) (*pricing.Quote, error) {
	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}

	rate := quotation.ExchangeRate
	margin := quotation.MarginPercent
	if req != nil {
		if req.ExchangeRate != nil {
			rate = *req.ExchangeRate
		}
		if req.MarginPercent != nil {
			margin = *req.MarginPercent
		}
	}

	quote, err := pricing.Calculate(pricing.Input{
		Lines:              quotationLines(quotation),
		FreightIntlUSD:     decimal.NewFromFloat(quotation.FreightCost),
		InspectionUSD:      decimal.NewFromFloat(quotation.InspectionCost),
		InsuranceUSD:       decimal.NewFromFloat(quotation.InsuranceCost),
		TariffPercent:      decimal.NewFromFloat(quotation.TariffPercent),
		ExchangeRate:       decimal.NewFromFloat(rate),
		FreightNationalCOP: decimal.NewFromFloat(quotation.FreightNationalCost),
		NationalizationCOP: decimal.NewFromFloat(quotation.NationalizationCost),
		MarginPercent:      decimal.NewFromFloat(margin),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return quote, nil
}

// itemLineTotal prices one line in isolation. Aggregate totals are
// not touched by line changes; they refresh on an explicit quotation
// save.
func itemLineTotal(item *domain.QuotationItem) (float64, error) {
	line := pricing.Line{
		Quantity:  item.Quantity,
		UnitPrice: decimal.NewFromFloat(item.UnitPrice),
	}
	if item.UnitPriceOverride != nil {
		override := decimal.NewFromFloat(*item.UnitPriceOverride)
		line.UnitPriceOverride = &override
	}
	total, err := pricing.LineTotal(line)
	if err != nil {
		return 0, err
	}
	value, _ := total.Round(2).Float64()
	return value, nil
}

// quotationLines converts persisted items into engine lines
func quotationLines(quotation *domain.Quotation) []pricing.Line {
	lines := make([]pricing.Line, len(quotation.Items))
	for i := range quotation.Items {
		item := &quotation.Items[i]
		line := pricing.Line{
			Quantity:      item.Quantity,
			UnitPrice:     decimal.NewFromFloat(item.UnitPrice),
			TariffPercent: decimal.NewFromFloat(item.TariffPercent),
			TariffAmount:  decimal.NewFromFloat(item.TariffAmount),
			FreightAmount: decimal.NewFromFloat(item.FreightAmount),
		}
		if item.UnitPriceOverride != nil {
			override := decimal.NewFromFloat(*item.UnitPriceOverride)
			line.UnitPriceOverride = &override
		}
		lines[i] = line
	}
	return lines
}

// recalculate runs the engine over the quotation and its items and
// writes the resulting totals back onto the models. Line totals and
// tariff amounts are persisted per item so listings never recompute.
func (s *QuotationService) recalculate(quotation *domain.Quotation) error {
	rate := decimal.NewFromFloat(quotation.ExchangeRate)

	lines := quotationLines(quotation)

	quote, err := pricing.Calculate(pricing.Input{
		Lines:              lines,
		FreightIntlUSD:     decimal.NewFromFloat(quotation.FreightCost),
		InspectionUSD:      decimal.NewFromFloat(quotation.InspectionCost),
		InsuranceUSD:       decimal.NewFromFloat(quotation.InsuranceCost),
		TariffPercent:      decimal.NewFromFloat(quotation.TariffPercent),
		ExchangeRate:       rate,
		FreightNationalCOP: decimal.NewFromFloat(quotation.FreightNationalCost),
		NationalizationCOP: decimal.NewFromFloat(quotation.NationalizationCost),
		MarginPercent:      decimal.NewFromFloat(quotation.MarginPercent),
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	for i := range quotation.Items {
		item := &quotation.Items[i]
		line := lines[i]
		total, err := pricing.LineTotal(line)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
		item.LineTotal, _ = total.Round(2).Float64()
	}

	// Other costs are destination-currency amounts applied after the
	// cascade; international freight, insurance and inspection are
	// already inside TotalCOP.
	discount, grand := pricing.GrandTotal(
		quote.TotalCOP,
		decimal.Zero,
		decimal.Zero,
		decimal.NewFromFloat(quotation.OtherCosts),
		decimal.NewFromFloat(quotation.DiscountPercent),
	)

	quotation.Subtotal, _ = quote.SubtotalFOBUSD.Float64()
	quotation.Total, _ = quote.TotalCOP.Float64()
	quotation.DiscountAmount, _ = discount.Float64()
	quotation.GrandTotal, _ = grand.Float64()
	return nil
}

// resolveExchangeRate picks the rate for a calculation: an explicit
// request value wins, then the live provider, then the stored default.
// With none of the three available the calculation cannot proceed.
func (s *QuotationService) resolveExchangeRate(ctx context.Context, explicit *float64) (decimal.Decimal, error) {
	if explicit != nil {
		rate := decimal.NewFromFloat(*explicit)
		if !rate.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: exchange rate must be positive", ErrInvalidInput)
		}
		return rate, nil
	}

	if s.rateProvider != nil {
		rate, err := s.rateProvider.Rate(ctx, s.baseCurrency, s.quoteCurrency)
		if err == nil {
			return rate, nil
		}
		if errors.Is(err, fx.ErrLookupTimeout) {
			return decimal.Zero, ErrRateLookupTimeout
		}
		s.logger.Warn("live exchange rate unavailable, falling back to stored default",
			zap.Error(err))
	}

	if stored, ok := s.settingFloat(ctx, domain.SettingDefaultExchangeRate); ok && stored > 0 {
		return decimal.NewFromFloat(stored), nil
	}
	return decimal.Zero, ErrRateUnavailable
}

// resolveMarginPercent falls back to the stored default margin when
// the request carries none
func (s *QuotationService) resolveMarginPercent(ctx context.Context, explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if stored, ok := s.settingFloat(ctx, domain.SettingDefaultMarginPercent); ok {
		return stored, nil
	}
	return 0, nil
}

func (s *QuotationService) quoteValidityDays(ctx context.Context) int {
	if stored, ok := s.settingFloat(ctx, domain.SettingQuoteValidityDays); ok && stored >= 1 {
		return int(stored)
	}
	return defaultQuoteValidityDays
}

// settingFloat reads a numeric pricing setting; missing or malformed
// values are reported as absent
func (s *QuotationService) settingFloat(ctx context.Context, key string) (float64, bool) {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to read pricing setting", zap.String("key", key), zap.Error(err))
		}
		return 0, false
	}
	if setting == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		s.logger.Warn("pricing setting is not numeric",
			zap.String("key", key), zap.String("value", setting.Value))
		return 0, false
	}
	return value, true
}
