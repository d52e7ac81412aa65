package entity

import "pricetrack/internal/domain/value"

// SourceDescriptor is static metadata about a data origin.
type SourceDescriptor struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	URL      string         `json:"url"`
	Currency value.Currency `json:"currency"`
}

// Product is descriptive metadata shown next to the chart.
type Product struct {
	Name            string         `json:"name"`
	Brand           string         `json:"brand"`
	Line            string         `json:"line"`
	Color           string         `json:"color"`
	CurrencyDisplay value.Currency `json:"currencyDisplay"`
	Notes           []string       `json:"notes"`
}

// Document is the canonical artifact consumed by the chart.
type Document struct {
	Product Product            `json:"product"`
	Sources []SourceDescriptor `json:"sources"`
	Series  []PricePoint       `json:"series"`
}

// Source looks up a descriptor by id.
func (d Document) Source(id string) (SourceDescriptor, bool) {
	for _, s := range d.Sources {
		if s.ID == id {
			return s, true
		}
	}

	return SourceDescriptor{}, false
}
