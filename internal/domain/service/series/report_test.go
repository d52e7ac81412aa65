package series_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/series"
	"pricetrack/internal/domain/value"
)

func point(date, source string, kind value.Kind, display string) entity.PricePoint {
	amount := decimal.RequireFromString(display)

	return entity.PricePoint{
		Observation: entity.Observation{
			Date:     value.MustParseDate(date),
			Kind:     kind,
			Price:    entity.Money{Amount: amount, Currency: value.CAD},
			SourceID: source,
		},
		Display: entity.DisplayPrice{Amount: amount, Currency: value.CAD},
	}
}

func TestReport_Summarize(t *testing.T) {
	rq := require.New(t)

	r := series.Report{Document: entity.Document{Series: []entity.PricePoint{
		point("2024-01-01", "shop", value.KindSale, "250"),
		point("2024-02-01", "ebay", value.KindSale, "200"),
		point("2024-03-01", "shop", value.KindMSRP, "300"),
		point("2024-04-01", "shop", value.KindSale, "190"),
	}}}

	r.Summarize("shop")

	rq.Len(r.Summaries, 2)

	shop := r.Summaries[0]
	rq.Equal("shop", shop.SourceID)
	rq.Equal(3, shop.Points)
	rq.Equal("190", shop.Min.String())
	rq.Equal("300", shop.Max.String())
	rq.Equal("190", shop.Latest.String())
	rq.Equal(value.MustParseDate("2024-04-01"), shop.LatestDate)

	rq.NotNil(r.PrimaryLatest)
	rq.Equal("190", r.PrimaryLatest.Display.Amount.String())
	rq.True(r.AllTimeLow)

	r.Document.Series = append(r.Document.Series, point("2024-05-01", "ebay", value.KindSale, "150"))
	r.Summarize("shop")
	rq.False(r.AllTimeLow)
}

func TestReport_PrimaryLatestTieBreak(t *testing.T) {
	archived := func(p entity.PricePoint) entity.PricePoint {
		p.Wayback = "20240401120000"
		return p
	}

	cases := []struct {
		name   string
		series []entity.PricePoint
		want   string
	}{
		{
			name: "newest date wins",
			series: []entity.PricePoint{
				point("2024-03-01", "shop", value.KindSale, "150"),
				point("2024-04-01", "shop", value.KindSale, "190"),
			},
			want: "190",
		},
		{
			name: "live beats archived on the same day",
			series: []entity.PricePoint{
				archived(point("2024-04-01", "shop", value.KindSale, "180")),
				point("2024-04-01", "shop", value.KindSale, "190"),
				archived(point("2024-04-01", "shop", value.KindSale, "200")),
			},
			want: "190",
		},
		{
			name: "cheaper of two live reads",
			series: []entity.PricePoint{
				point("2024-04-01", "shop", value.KindSale, "180"),
				point("2024-04-01", "shop", value.KindSale, "190"),
			},
			want: "180",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			r := series.Report{Document: entity.Document{Series: tc.series}}
			r.Summarize("shop")

			rq.NotNil(r.PrimaryLatest)
			rq.Equal(tc.want, r.PrimaryLatest.Display.Amount.String())
		})
	}
}
