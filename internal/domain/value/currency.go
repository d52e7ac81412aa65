package value

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 alphabetic code.
type Currency string

const (
	CAD Currency = "CAD"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

func ParseCurrency(s string) (Currency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return "", fmt.Errorf("currency code %q must have 3 letters", s)
	}

	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("currency code %q must be alphabetic", s)
		}
	}

	return Currency(s), nil
}

func (c Currency) String() string {
	return string(c)
}
