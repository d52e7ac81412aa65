// Package frankfurter resolves ECB reference rates through the Frankfurter
// API. For dates without a fixing the API answers with the previous business
// day, which is accepted as is.
package frankfurter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/service/fx"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	DefaultBaseURL = "https://api.frankfurter.app"
	ProviderName   = "frankfurter.app (ECB)"
)

type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	getter  Getter
	baseURL string
	name    string
}

func NewClient(getter Getter, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		getter:  getter,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		name:    ProviderName,
	}
}

// WithName overrides the provider identity recorded on converted points.
func (c *Client) WithName(name string) *Client {
	if name != "" {
		c.name = name
	}

	return c
}

func (c *Client) Name() string {
	return c.name
}

type ratesResponse struct {
	Amount decimal.Decimal            `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

func (c *Client) Rate(ctx context.Context, date value.Date, from, to value.Currency) (fx.Quote, error) {
	params := url.Values{}
	params.Set("from", from.String())
	params.Set("to", to.String())

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, date, params.Encode())

	body, err := c.getter.Get(ctx, endpoint)
	if err != nil {
		return fx.Quote{}, domain.WrapError(err, errcodes.RateUnavailable, "rate request failed")
	}

	var resp ratesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fx.Quote{}, domain.WrapError(err, errcodes.RateUnavailable, "malformed rate response")
	}

	rate, ok := resp.Rates[to.String()]
	if !ok || !rate.IsPositive() {
		return fx.Quote{}, domain.NewError(errcodes.RateUnavailable, fmt.Sprintf("no %s rate in response", to))
	}

	// Rates are quoted for Amount units of the base currency.
	if resp.Amount.IsPositive() && !resp.Amount.Equal(decimal.NewFromInt(1)) {
		rate = rate.Div(resp.Amount)
	}

	quote := fx.Quote{Rate: rate, EffectiveDate: date}

	if effective, err := value.ParseDate(resp.Date); err == nil {
		quote.EffectiveDate = effective
	}

	return quote, nil
}
