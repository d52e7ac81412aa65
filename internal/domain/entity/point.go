package entity

import (
	"github.com/shopspring/decimal"

	"pricetrack/internal/domain/value"
)

// Observation is a price seen on one page, before currency normalization.
// Supplementary points use exactly this shape.
type Observation struct {
	Date     value.Date `json:"date"`
	Kind     value.Kind `json:"kind"`
	Price    Money      `json:"price"`
	SourceID string     `json:"sourceId"`
	URL      string     `json:"url"`
	Wayback  string     `json:"wayback,omitempty"`
}

// SupplementaryPoint is an observation supplied out of band.
type SupplementaryPoint = Observation

// DedupKey identifies duplicate observations across all inputs.
type DedupKey struct {
	Date     value.Date
	Kind     value.Kind
	Amount   string
	Currency value.Currency
	SourceID string
}

func (o Observation) Key() DedupKey {
	return DedupKey{
		Date:     o.Date,
		Kind:     o.Kind,
		Amount:   o.Price.Amount.String(),
		Currency: o.Price.Currency,
		SourceID: o.SourceID,
	}
}

// Conversion records how a display amount was derived.
type Conversion struct {
	Pair     string          `json:"pair"`
	Rate     decimal.Decimal `json:"rate"`
	Provider string          `json:"provider"`
	Date     value.Date      `json:"date"`
}

// DisplayPrice is the amount in the display currency. FX is nil when the
// source already quoted the display currency.
type DisplayPrice struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency value.Currency  `json:"currency"`
	FX       *Conversion     `json:"fx,omitempty"`
}

// PricePoint is one entry of the canonical series.
type PricePoint struct {
	Observation
	Display DisplayPrice `json:"priceCad"`
}
