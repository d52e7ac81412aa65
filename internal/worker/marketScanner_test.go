package worker_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/extractor"
	"pricetrack/internal/domain/service/series"
	"pricetrack/internal/domain/value"
	"pricetrack/internal/infrastructure/persistence"
	"pricetrack/internal/worker"
	"pricetrack/pkg/errcodes"
)

const (
	ebayURL   = "https://ebay.example/sch?q=bag"
	kijijiURL = "https://kijiji.example/search?q=bag"
)

type pages map[string]string

func (p pages) Fetch(_ context.Context, url string) (entity.Page, error) {
	body, ok := p[url]
	if !ok {
		return entity.Page{}, errors.New("503")
	}

	return entity.Page{URL: url, Body: []byte(body)}, nil
}

func catalog() series.Catalog {
	rules := extractor.Rules{
		Strategies: []extractor.Strategy{extractor.Generic{}},
		SaneRange:  extractor.Range{Min: decimal.NewFromInt(80), Max: decimal.NewFromInt(350)},
	}

	return series.Catalog{
		PrimaryID: "shop",
		Sources: []series.Source{
			{Descriptor: entity.SourceDescriptor{ID: "shop", URL: "https://shop.example", Currency: value.CAD}, Live: true},
			{Descriptor: entity.SourceDescriptor{ID: "ebay", URL: ebayURL, Currency: value.CAD}, Rules: rules, Listing: true},
			{Descriptor: entity.SourceDescriptor{ID: "kijiji", URL: kijijiURL, Currency: value.CAD}, Rules: rules, Listing: true},
		},
	}
}

func stale(source string, n int) []entity.Observation {
	out := make([]entity.Observation, 0, n)
	for i := range n {
		out = append(out, entity.Observation{
			Date:     value.MustParseDate("2024-01-01").AddDays(i),
			Kind:     value.KindSale,
			Price:    entity.MustMoney("150", value.CAD),
			SourceID: source,
			URL:      "https://" + source + ".example/old",
		})
	}

	return out
}

func TestMarketScanner_ScanOnce(t *testing.T) {
	rq := require.New(t)

	ctx := context.Background()
	store := persistence.NewSupplementaryFile(filepath.Join(t.TempDir(), "supplementary.json"))
	rq.NoError(store.Save(ctx, append(stale("ebay", 5), stale("kijiji", 2)...)))

	scanner := worker.NewMarketScanner(catalog(), pages{
		ebayURL: `<ul><li>Bag <b>C $140.00</b></li><li>Bag <b>C $160.00</b></li><li>Strap C $20.00</li></ul>`,
		// kijiji is down: its stored points survive.
	}, store).
		WithRateControl(time.Millisecond).
		WithClock(func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) })

	report, err := scanner.ScanOnce(ctx)
	rq.NoError(err)
	rq.Equal(1, report.Scanned)
	rq.Equal(1, report.Failed)
	rq.Equal(2, report.Fresh)
	rq.Equal(4, report.Stored)

	points, err := store.Load(ctx)
	rq.NoError(err)

	var ebay []string
	kijiji := 0

	for _, p := range points {
		switch p.SourceID {
		case "ebay":
			ebay = append(ebay, p.Date.String()+" "+p.Price.Amount.StringFixed(2))
			rq.Equal(ebayURL, p.URL)
		case "kijiji":
			kijiji++
		}
	}

	rq.Equal([]string{"2024-06-10 140.00", "2024-06-10 160.00"}, ebay)
	rq.Equal(2, kijiji)
}

func TestMarketScanner_NothingFresh(t *testing.T) {
	rq := require.New(t)

	ctx := context.Background()
	store := persistence.NewSupplementaryFile(filepath.Join(t.TempDir(), "supplementary.json"))
	rq.NoError(store.Save(ctx, stale("ebay", 3)))

	scanner := worker.NewMarketScanner(catalog(), pages{ebayURL: "<p>No results</p>"}, store).
		WithRateControl(time.Millisecond)

	report, err := scanner.ScanSources(ctx, "ebay")
	rq.NoError(err)
	rq.Equal(1, report.Scanned)
	rq.Zero(report.Fresh)

	points, err := store.Load(ctx)
	rq.NoError(err)
	rq.Len(points, 3, "an empty page does not wipe the source")
}

func TestMarketScanner_MaxListings(t *testing.T) {
	rq := require.New(t)

	ctx := context.Background()
	store := persistence.NewSupplementaryFile(filepath.Join(t.TempDir(), "supplementary.json"))

	scanner := worker.NewMarketScanner(catalog(), pages{
		ebayURL: `<p>C $100</p><p>C $110</p><p>C $120</p>`,
	}, store).
		WithMaxListings(2).
		WithRateControl(time.Millisecond)

	report, err := scanner.ScanSources(ctx, "ebay")
	rq.NoError(err)
	rq.Equal(2, report.Fresh)
	rq.Equal(map[string]int{"ebay": 2}, report.Sources)
}

func TestMarketScanner_RunStopsOnCancel(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())

	store := persistence.NewSupplementaryFile(filepath.Join(t.TempDir(), "supplementary.json"))
	scanner := worker.NewMarketScanner(catalog(), pages{}, store).
		WithInterval(time.Hour).
		WithRateControl(time.Millisecond)

	done := make(chan error, 1)

	go func() { done <- scanner.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		rq.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop")
	}
}

func TestMarketScanner_ScanSourcesUnknown(t *testing.T) {
	rq := require.New(t)

	ctx := context.Background()
	store := persistence.NewSupplementaryFile(filepath.Join(t.TempDir(), "supplementary.json"))
	rq.NoError(store.Save(ctx, stale("ebay", 2)))

	scanner := worker.NewMarketScanner(catalog(), pages{ebayURL: `<p>C $140</p>`}, store).
		WithRateControl(time.Millisecond)

	for _, id := range []string{"shop", "missing"} {
		_, err := scanner.ScanSources(ctx, "ebay", id)
		rq.True(domain.HasCode(err, errcodes.ValidationError), id)
	}

	points, err := store.Load(ctx)
	rq.NoError(err)
	rq.Len(points, 2, "a rejected request scans nothing")
}
