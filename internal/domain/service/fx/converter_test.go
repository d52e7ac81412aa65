package fx_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/fx"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
)

type stubProvider struct {
	mu    sync.Mutex
	calls int
	rates map[string]string
	err   error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Rate(_ context.Context, date value.Date, from, to value.Currency) (fx.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++

	if p.err != nil {
		return fx.Quote{}, p.err
	}

	rate, ok := p.rates[date.String()+" "+fx.Pair(from, to)]
	if !ok {
		return fx.Quote{}, errors.New("no rate")
	}

	return fx.Quote{Rate: decimal.RequireFromString(rate), EffectiveDate: date}, nil
}

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) FXLookup(cached bool) {
	if cached {
		m.hits++
	} else {
		m.misses++
	}
}

func TestConvert_NonTrivial(t *testing.T) {
	rq := require.New(t)

	d := value.MustParseDate("2024-06-10")
	provider := &stubProvider{rates: map[string]string{"2024-06-10 USD/CAD": "1.37"}}
	conv := fx.NewConverter(provider, value.CAD)

	got, err := conv.Convert(context.Background(), d, entity.MustMoney("225.00", value.USD))
	rq.NoError(err)

	rq.Equal("308.25", got.Amount.StringFixed(2))
	rq.True(got.Amount.Equal(decimal.RequireFromString("308.25")))
	rq.Equal(value.CAD, got.Currency)
	rq.NotNil(got.FX)
	rq.Equal("USD/CAD", got.FX.Pair)
	rq.Equal("1.37", got.FX.Rate.String())
	rq.Equal("stub", got.FX.Provider)
	rq.Equal(d, got.FX.Date)
}

func TestConvert_Rounding(t *testing.T) {
	rq := require.New(t)

	d := value.MustParseDate("2024-06-10")
	provider := &stubProvider{rates: map[string]string{"2024-06-10 EUR/CAD": "1.4713"}}
	conv := fx.NewConverter(provider, value.CAD)

	got, err := conv.Convert(context.Background(), d, entity.MustMoney("199.99", value.EUR))
	rq.NoError(err)
	rq.Equal("294.25", got.Amount.String())
}

func TestConvert_Identity(t *testing.T) {
	rq := require.New(t)

	provider := &stubProvider{}
	conv := fx.NewConverter(provider, value.CAD)

	m := entity.MustMoney("199.90", value.CAD)
	got, err := conv.Convert(context.Background(), value.MustParseDate("2024-06-10"), m)
	rq.NoError(err)

	rq.True(got.Amount.Equal(m.Amount))
	rq.Equal(m.Amount.String(), got.Amount.String())
	rq.Nil(got.FX)
	rq.Zero(provider.calls)
}

func TestRateFor_SameCurrency(t *testing.T) {
	rq := require.New(t)

	provider := &stubProvider{err: errors.New("must not be called")}
	conv := fx.NewConverter(provider, value.CAD)

	q, err := conv.RateFor(context.Background(), value.MustParseDate("2024-01-01"), value.USD, value.USD)
	rq.NoError(err)
	rq.Equal("1", q.Rate.String())
	rq.Zero(provider.calls)
}

func TestRateFor_Cached(t *testing.T) {
	rq := require.New(t)

	provider := &stubProvider{rates: map[string]string{
		"2024-06-10 USD/CAD": "1.37",
		"2024-06-11 USD/CAD": "1.38",
	}}
	metrics := &countingMetrics{}
	conv := fx.NewConverter(provider, value.CAD).WithMetrics(metrics)
	ctx := context.Background()

	for range 3 {
		q, err := conv.RateFor(ctx, value.MustParseDate("2024-06-10"), value.USD, value.CAD)
		rq.NoError(err)
		rq.Equal("1.37", q.Rate.String())
	}

	_, err := conv.RateFor(ctx, value.MustParseDate("2024-06-11"), value.USD, value.CAD)
	rq.NoError(err)

	rq.Equal(2, provider.calls)
	rq.Equal(2, metrics.hits)
	rq.Equal(2, metrics.misses)
}

func TestRateFor_Failure(t *testing.T) {
	rq := require.New(t)

	provider := &stubProvider{err: errors.New("503 service unavailable")}
	conv := fx.NewConverter(provider, value.CAD)
	ctx := context.Background()
	d := value.MustParseDate("2024-06-10")

	_, err := conv.RateFor(ctx, d, value.USD, value.CAD)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.RateUnavailable))

	_, err = conv.Convert(ctx, d, entity.MustMoney("10", value.USD))
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.RateUnavailable))
	rq.Equal(1, provider.calls, "failure is remembered for the run")
}

func TestRateFor_NonPositive(t *testing.T) {
	rq := require.New(t)

	provider := &stubProvider{rates: map[string]string{"2024-06-10 USD/CAD": "0"}}
	conv := fx.NewConverter(provider, value.CAD)

	_, err := conv.RateFor(context.Background(), value.MustParseDate("2024-06-10"), value.USD, value.CAD)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.RateUnavailable))
}
