package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// Converter resolves exchange rates through an ordered provider chain,
// falling through to the next provider on any transport failure or
// non-numeric answer. Best effort: it never participates in a ledger
// transaction.
type Converter struct {
	providers []string // URL templates with {from} and {to} placeholders
	cache     usecase.Cache
	cacheTTL  time.Duration
	http      *http.Client
	logger    zerolog.Logger
}

// NewConverter creates a Converter. cache may be nil to disable caching.
func NewConverter(providers []string, cache usecase.Cache, cacheTTL time.Duration, logger zerolog.Logger) *Converter {
	return &Converter{
		providers: providers,
		cache:     cache,
		cacheTTL:  cacheTTL,
		http:      &http.Client{Timeout: 5 * time.Second},
		logger:    logger.With().Str("component", "fx").Logger(),
	}
}

// Convert returns amount converted from one currency to another plus the
// rate used. Identity when from == to; Internal only when every provider
// fails.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if err := domain.ValidateCurrency(from); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if err := domain.ValidateCurrency(to); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if from == to {
		return amount, decimal.NewFromInt(1), nil
	}

	rate, err := c.rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return amount.Mul(rate).Round(domain.MoneyScale), rate, nil
}

func (c *Converter) rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	cacheKey := "fx:" + from + ":" + to

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			if rate, err := decimal.NewFromString(string(cached)); err == nil {
				return rate, nil
			}
		}
	}

	for _, tmpl := range c.providers {
		rate, err := c.fetch(ctx, tmpl, from, to)
		if err != nil {
			c.logger.Warn().Err(err).Str("from", from).Str("to", to).Msg("rate provider failed, trying next")
			continue
		}

		if c.cache != nil {
			_ = c.cache.Set(ctx, cacheKey, []byte(rate.String()), c.cacheTTL)
		}
		return rate, nil
	}

	return decimal.Zero, domain.ErrRateUnavailable
}

func (c *Converter) fetch(ctx context.Context, tmpl, from, to string) (decimal.Decimal, error) {
	endpoint := strings.NewReplacer("{from}", from, "{to}", to).Replace(tmpl)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return decimal.Zero, err
	}
	return parseRate(body, to)
}

// parseRate accepts the two response shapes the configured providers use:
// a bare number, or a JSON object with "rate", "result", or a "rates" map
// keyed by currency.
func parseRate(body []byte, to string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(string(body))
	if rate, err := decimal.NewFromString(trimmed); err == nil {
		return validRate(rate)
	}

	var payload struct {
		Rate   *float64           `json:"rate"`
		Result *float64           `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("non-numeric provider response")
	}

	switch {
	case payload.Rate != nil:
		return validRate(decimal.NewFromFloat(*payload.Rate))
	case payload.Result != nil:
		return validRate(decimal.NewFromFloat(*payload.Result))
	case payload.Rates != nil:
		if v, ok := payload.Rates[to]; ok {
			return validRate(decimal.NewFromFloat(v))
		}
	}
	return decimal.Zero, fmt.Errorf("provider response carries no rate")
}

func validRate(rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("non-positive rate %s", rate)
	}
	return rate, nil
}
