// Package fx fetches USD/COP exchange rates from an external provider.
// Rates feed the pricing cascade; a calculation never proceeds with a
// missing or non-positive rate.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrLookupTimeout is returned when the provider does not answer
// within the configured deadline
var ErrLookupTimeout = errors.New("exchange rate lookup timed out")

// ErrRateUnavailable is returned when the provider answers but cannot
// supply a usable rate for the requested pair
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// RateProvider supplies the current market rate for a currency pair
type RateProvider interface {
	Rate(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// HTTPProvider fetches rates over HTTP and caches them for a short TTL
// so interactive recalculations do not hammer the upstream service.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	ttl     time.Duration
	client  *http.Client
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedRate
}

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// rateResponse is the provider's wire format
type rateResponse struct {
	Base  string            `json:"base"`
	Rates map[string]string `json:"rates"`
}

// NewHTTPProvider creates a provider from FX configuration.
// Returns nil when no provider URL is configured; callers must then
// require an explicit rate on every calculation.
func NewHTTPProvider(cfg *config.FXConfig, logger *zap.Logger) *HTTPProvider {
	if cfg.ProviderURL == "" {
		logger.Info("Exchange rate provider not configured, explicit rates required")
		return nil
	}
	return &HTTPProvider{
		baseURL: cfg.ProviderURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.TimeoutDuration(),
		ttl:     cfg.CacheTTLDuration(),
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger,
		cache:   make(map[string]cachedRate),
	}
}

// Rate returns the current rate for base/quote, serving from cache
// within the TTL
func (p *HTTPProvider) Rate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	key := base + "/" + quote

	p.mu.Lock()
	if cached, ok := p.cache[key]; ok && time.Since(cached.fetchedAt) < p.ttl {
		p.mu.Unlock()
		return cached.rate, nil
	}
	p.mu.Unlock()

	rate, err := p.fetch(ctx, base, quote)
	if err != nil {
		return decimal.Zero, err
	}

	p.mu.Lock()
	p.cache[key] = cachedRate{rate: rate, fetchedAt: time.Now()}
	p.mu.Unlock()

	return rate, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/v1/rates?base=%s&symbols=%s",
		p.baseURL, url.QueryEscape(base), url.QueryEscape(quote))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			p.logger.Warn("Exchange rate lookup timed out",
				zap.String("pair", base+"/"+quote),
				zap.Duration("duration", time.Since(start)),
			)
			return decimal.Zero, ErrLookupTimeout
		}
		return decimal.Zero, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("Exchange rate provider returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("pair", base+"/"+quote),
		)
		return decimal.Zero, ErrRateUnavailable
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate response: %w", err)
	}

	raw, ok := body.Rates[quote]
	if !ok {
		return decimal.Zero, ErrRateUnavailable
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, ErrRateUnavailable
	}

	p.logger.Debug("Exchange rate fetched",
		zap.String("pair", base+"/"+quote),
		zap.String("rate", rate.String()),
		zap.Duration("duration", time.Since(start)),
	)

	return rate, nil
}
