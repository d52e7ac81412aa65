// Package fx converts observed prices into the display currency using
// date-specific reference rates.
package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

const (
	displayPlaces   = 2
	defaultCacheTTL = time.Hour
)

// Quote is a rate as published by a provider. EffectiveDate may precede the
// requested date when the provider falls back to its last business day.
type Quote struct {
	Rate          decimal.Decimal
	EffectiveDate value.Date
}

// RateProvider resolves historical reference rates.
type RateProvider interface {
	Name() string
	Rate(ctx context.Context, date value.Date, from, to value.Currency) (Quote, error)
}

// Metrics observes lookups. A nil Metrics is allowed.
type Metrics interface {
	FXLookup(cached bool)
}

type Converter struct {
	provider RateProvider
	display  value.Currency
	cache    *cache.Cache
	metrics  Metrics
}

func NewConverter(provider RateProvider, display value.Currency) *Converter {
	return &Converter{
		provider: provider,
		display:  display,
		cache:    cache.New(defaultCacheTTL, 2*defaultCacheTTL),
	}
}

func (c *Converter) WithCacheTTL(ttl time.Duration) *Converter {
	c.cache = cache.New(ttl, 2*ttl)
	return c
}

func (c *Converter) WithMetrics(m Metrics) *Converter {
	c.metrics = m
	return c
}

func (c *Converter) Display() value.Currency {
	return c.display
}

type cached struct {
	quote Quote
	err   error
}

// RateFor returns the rate converting from into to on date. Identical
// currencies resolve to 1 without consulting the provider. Failures are
// reported with errcodes.RateUnavailable and remembered for the cache TTL.
func (c *Converter) RateFor(ctx context.Context, date value.Date, from, to value.Currency) (Quote, error) {
	if from == to {
		return Quote{Rate: decimal.NewFromInt(1), EffectiveDate: date}, nil
	}

	key := fmt.Sprintf("%s:%s/%s", date, from, to)

	if v, ok := c.cache.Get(key); ok {
		c.observe(true)

		hit, _ := v.(cached)

		return hit.quote, hit.err
	}

	c.observe(false)

	quote, err := c.provider.Rate(ctx, date, from, to)
	if err == nil && !quote.Rate.IsPositive() {
		err = fmt.Errorf("non-positive rate %s", quote.Rate)
	}

	if err != nil {
		if !domain.HasCode(err, errcodes.RateUnavailable) {
			err = domain.WrapError(err, errcodes.RateUnavailable, fmt.Sprintf("no %s/%s rate for %s", from, to, date))
		}

		quote = Quote{}
	}

	if ctx.Err() == nil {
		c.cache.Set(key, cached{quote: quote, err: err}, cache.DefaultExpiration)
	}

	if err != nil {
		return Quote{}, err
	}

	logger(ctx).Debug("fx rate resolved",
		logx.FieldDate, date.String(),
		logx.FieldCurrency, Pair(from, to),
		"rate", quote.Rate.String(),
		"effective", quote.EffectiveDate.String(),
	)

	return quote, nil
}

// Convert expresses m in the display currency as of date, rounded to cents.
// Conversion metadata is attached only when a real conversion took place.
func (c *Converter) Convert(ctx context.Context, date value.Date, m entity.Money) (entity.DisplayPrice, error) {
	if m.Currency == c.display {
		return entity.DisplayPrice{Amount: m.Amount, Currency: c.display}, nil
	}

	quote, err := c.RateFor(ctx, date, m.Currency, c.display)
	if err != nil {
		return entity.DisplayPrice{}, fmt.Errorf("fx.Convert: %w", err)
	}

	return entity.DisplayPrice{
		Amount:   m.Amount.Mul(quote.Rate).Round(displayPlaces),
		Currency: c.display,
		FX: &entity.Conversion{
			Pair:     Pair(m.Currency, c.display),
			Rate:     quote.Rate,
			Provider: c.provider.Name(),
			Date:     date,
		},
	}, nil
}

// Pair formats a currency pair as "USD/CAD".
func Pair(from, to value.Currency) string {
	return from.String() + "/" + to.String()
}

func (c *Converter) observe(hit bool) {
	if c.metrics != nil {
		c.metrics.FXLookup(hit)
	}
}
