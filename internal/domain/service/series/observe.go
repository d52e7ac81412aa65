package series

import (
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/extractor"
	"pricetrack/internal/domain/value"
)

// Observe extracts every price on page and dates it. Wayback is set for
// archived pages only.
func Observe(src Source, page entity.Page, date value.Date, wayback string) []entity.Observation {
	rules := src.Rules
	if rules.Currency == "" {
		rules.Currency = src.Descriptor.Currency
	}

	candidates := extractor.Extract(page.Body, rules)

	out := make([]entity.Observation, 0, len(candidates))

	for _, c := range candidates {
		out = append(out, entity.Observation{
			Date:     date,
			Kind:     c.Kind,
			Price:    entity.Money{Amount: c.Amount, Currency: c.Currency},
			SourceID: src.Descriptor.ID,
			URL:      page.URL,
			Wayback:  wayback,
		})
	}

	return out
}
