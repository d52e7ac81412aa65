package entity

import (
	"github.com/shopspring/decimal"

	"pricetrack/internal/domain/value"
)

//nolint:gochecknoinits
func init() {
	// The chart consumes amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is an amount in a specific currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency value.Currency  `json:"currency"`
}

func NewMoney(amount string, currency value.Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}

	return Money{Amount: d, Currency: currency}, nil
}

func MustMoney(amount string, currency value.Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}

	return m
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency.String()
}
