package extractor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"pricetrack/internal/domain/value"
)

var amountPattern = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$|^\d+(?:\.\d+)?$`) //nolint:gochecknoglobals // skip

// ParseAmount parses "1,299.99", "199.9" or "225". Thousand separators must
// group by three; anything else is rejected.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if !amountPattern.MatchString(raw) {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}

	return d, true
}

// symbolCurrency maps a price prefix to a currency. An empty result means
// the plain "$" sign, whose meaning depends on the source.
func symbolCurrency(symbol string) value.Currency {
	switch strings.ToUpper(strings.ReplaceAll(symbol, " ", "")) {
	case "C$", "CA$", "CAD", "CAD$":
		return value.CAD
	case "US$", "USD", "USD$":
		return value.USD
	case "€", "EUR":
		return value.EUR
	case "£", "GBP":
		return value.GBP
	default:
		return ""
	}
}
