package extractor

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"

	"pricetrack/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	StrategyStructured = "structured"
	StrategyLabeled    = "labeled"
	StrategyEmbedded   = "embedded-json"
	StrategyGeneric    = "generic"
)

// Lookup returns the built-in strategy registered under name.
func Lookup(name string) (Strategy, error) {
	switch name {
	case StrategyStructured:
		return Structured{}, nil
	case StrategyLabeled:
		return Labeled{}, nil
	case StrategyEmbedded:
		return EmbeddedJSON{}, nil
	case StrategyGeneric:
		return Generic{}, nil
	default:
		return nil, fmt.Errorf("extractor.Lookup: unknown strategy %q", name)
	}
}

// Structured reads schema.org product data: JSON-LD offers, microdata
// itemprop attributes and Open Graph product tags.
type Structured struct{}

func (Structured) Name() string           { return StrategyStructured }
func (Structured) Confidence() Confidence { return High }

func (Structured) Extract(page *Page, _ Rules) []Candidate {
	doc := page.Document()
	if doc == nil {
		return nil
	}

	var out []Candidate

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}

		out = append(out, walkOffers(data)...)
	})

	if c, ok := attrPrice(doc, `[itemprop="price"]`, `[itemprop="priceCurrency"]`); ok {
		out = append(out, c)
	}

	if c, ok := attrPrice(doc, `meta[property="product:price:amount"]`, `meta[property="product:price:currency"]`); ok {
		out = append(out, c)
	}

	if c, ok := attrPrice(doc, `meta[property="og:price:amount"]`, `meta[property="og:price:currency"]`); ok {
		out = append(out, c)
	}

	return out
}

func walkOffers(node any) []Candidate {
	switch v := node.(type) {
	case []any:
		var out []Candidate
		for _, item := range v {
			out = append(out, walkOffers(item)...)
		}

		return out
	case map[string]any:
		var out []Candidate

		if raw, ok := v["price"]; ok {
			if c, ok := offerCandidate(raw, v["priceCurrency"]); ok {
				out = append(out, c)
			}
		} else if raw, ok := v["lowPrice"]; ok {
			if c, ok := offerCandidate(raw, v["priceCurrency"]); ok {
				out = append(out, c)
			}
		}

		for _, key := range slices.Sorted(maps.Keys(v)) {
			if key == "price" || key == "lowPrice" {
				continue
			}

			out = append(out, walkOffers(v[key])...)
		}

		return out
	default:
		return nil
	}
}

func offerCandidate(rawPrice, rawCurrency any) (Candidate, bool) {
	var text string

	switch p := rawPrice.(type) {
	case string:
		text = p
	case float64:
		text = strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return Candidate{}, false
	}

	amount, ok := ParseAmount(text)
	if !ok {
		return Candidate{}, false
	}

	c := Candidate{Amount: amount, Kind: value.KindSale}

	if s, ok := rawCurrency.(string); ok {
		if cur, err := value.ParseCurrency(s); err == nil {
			c.Currency = cur
		}
	}

	return c, true
}

func attrPrice(doc *goquery.Document, priceSel, currencySel string) (Candidate, bool) {
	node := doc.Find(priceSel).First()
	if node.Length() == 0 {
		return Candidate{}, false
	}

	text, ok := node.Attr("content")
	if !ok {
		text = node.Text()
	}

	amount, ok := ParseAmount(text)
	if !ok {
		return Candidate{}, false
	}

	c := Candidate{Amount: amount, Kind: value.KindSale}

	if cur, ok := doc.Find(currencySel).First().Attr("content"); ok {
		if parsed, err := value.ParseCurrency(cur); err == nil {
			c.Currency = parsed
		}
	}

	return c, true
}

// moneyPattern matches an optional currency prefix followed by an amount.
var moneyPattern = regexp.MustCompile(`(?i)(C\s?\$|CA\$|CAD\s?\$?|US\s?\$|USD\s?\$?|\$|€|£)\s?(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`) //nolint:gochecknoglobals,lll // skip

// Labeled finds a list price announced by one of the source's MSRP labels.
type Labeled struct{}

func (Labeled) Name() string           { return StrategyLabeled }
func (Labeled) Confidence() Confidence { return Medium }

func (Labeled) Extract(page *Page, rules Rules) []Candidate {
	if len(rules.MSRPLabels) == 0 {
		return nil
	}

	window := rules.LabelWindow
	if window <= 0 {
		window = defaultLabelWindow
	}

	text := strings.ToLower(strings.Join(strings.Fields(page.Text()), " "))

	var out []Candidate

	for _, label := range rules.MSRPLabels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}

		for offset := 0; ; {
			idx := strings.Index(text[offset:], label)
			if idx < 0 {
				break
			}

			start := offset + idx + len(label)
			end := min(start+window, len(text))

			if m := moneyPattern.FindStringSubmatch(text[start:end]); m != nil {
				if amount, ok := ParseAmount(m[2]); ok {
					out = append(out, Candidate{Amount: amount, Currency: symbolCurrency(m[1]), Kind: value.KindMSRP})
				}
			}

			offset = start
		}
	}

	return out
}

const defaultLabelWindow = 40

var embeddedPricePattern = regexp.MustCompile(`"(?:price|currentPrice|salePrice|amount)"\s*:\s*"?(\d+(?:\.\d+)?)"?`) //nolint:gochecknoglobals,lll // skip

// EmbeddedJSON scans the raw markup for price fields of inline state blobs.
type EmbeddedJSON struct{}

func (EmbeddedJSON) Name() string           { return StrategyEmbedded }
func (EmbeddedJSON) Confidence() Confidence { return Low }

func (EmbeddedJSON) Extract(page *Page, _ Rules) []Candidate {
	var out []Candidate

	for _, m := range embeddedPricePattern.FindAllStringSubmatch(page.HTML, -1) {
		if amount, ok := ParseAmount(m[1]); ok {
			out = append(out, Candidate{Amount: amount, Kind: value.KindSale})
		}
	}

	return out
}

// Generic takes every currency amount in the visible text. Marketplace search
// pages list many prices; any of them may be representative.
type Generic struct{}

func (Generic) Name() string           { return StrategyGeneric }
func (Generic) Confidence() Confidence { return Low }

func (Generic) Extract(page *Page, _ Rules) []Candidate {
	var out []Candidate

	for _, m := range moneyPattern.FindAllStringSubmatch(page.Text(), -1) {
		if amount, ok := ParseAmount(m[2]); ok {
			out = append(out, Candidate{Amount: amount, Currency: symbolCurrency(m[1]), Kind: value.KindSale})
		}
	}

	return out
}
