// Package extractor pulls price candidates out of raw HTML.
//
// Extraction is a prioritized list of strategies. A strategy contributes only
// the price kinds no higher-priority strategy has produced yet, so structured
// data shadows regex guesses for the same kind. Nothing here performs I/O, and
// no input, however broken, makes extraction fail: "no price" is an empty
// result.
package extractor

import (
	"bytes"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"pricetrack/internal/domain/value"
)

// Confidence orders strategies by how much their output can be trusted.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

// Candidate is one extracted price.
type Candidate struct {
	Amount   decimal.Decimal
	Currency value.Currency
	Kind     value.Kind
	Strategy string
}

// Strategy extracts candidates from a page.
type Strategy interface {
	Name() string
	Confidence() Confidence
	Extract(page *Page, rules Rules) []Candidate
}

// Range bounds plausible amounts. A zero Max means no upper bound.
type Range struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (r Range) Contains(d decimal.Decimal) bool {
	if d.LessThan(r.Min) {
		return false
	}

	return r.Max.IsZero() || !d.GreaterThan(r.Max)
}

// Rules is the per-source extraction configuration.
type Rules struct {
	Currency    value.Currency // used when the page does not say
	Strategies  []Strategy     // priority order
	SaneRange   Range          // applied to everything below High confidence
	MSRPLabels  []string       // e.g. "regular price", "was"
	LabelWindow int            // characters searched after a label
}

// Page wraps raw HTML and parses it on first use.
type Page struct {
	HTML string

	once sync.Once
	doc  *goquery.Document
}

func NewPage(html []byte) *Page {
	return &Page{HTML: string(html)}
}

// Document returns the parsed DOM, or nil when the markup cannot be parsed.
func (p *Page) Document() *goquery.Document {
	p.once.Do(func() {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(p.HTML)))
		if err == nil {
			p.doc = doc
		}
	})

	return p.doc
}

// Text is the visible text of the page; scripts and styles are excluded.
func (p *Page) Text() string {
	doc := p.Document()
	if doc == nil {
		return p.HTML
	}

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()

	return body.Text()
}

// Extract runs the rules' strategies over html.
func Extract(html []byte, rules Rules) []Candidate {
	page := NewPage(html)

	var (
		out      []Candidate
		seenKind = map[value.Kind]bool{}
		seen     = map[candidateKey]bool{}
	)

	for _, strategy := range rules.Strategies {
		found := strategy.Extract(page, rules)
		if len(found) == 0 {
			continue
		}

		contributed := map[value.Kind]bool{}

		for _, c := range found {
			if seenKind[c.Kind] {
				continue
			}

			if c.Currency == "" {
				c.Currency = rules.Currency
			}

			if !c.Amount.IsPositive() {
				continue
			}

			if strategy.Confidence() < High && !rules.SaneRange.Contains(c.Amount) {
				continue
			}

			key := candidateKey{kind: c.Kind, amount: c.Amount.String(), currency: c.Currency}
			if seen[key] {
				continue
			}

			seen[key] = true
			c.Strategy = strategy.Name()
			out = append(out, c)
			contributed[c.Kind] = true
		}

		for k := range contributed {
			seenKind[k] = true
		}
	}

	return out
}

type candidateKey struct {
	kind     value.Kind
	amount   string
	currency value.Currency
}
