package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"pricetrack/internal/metrics"
)

func TestRun(t *testing.T) {
	rq := require.New(t)

	m := metrics.NewRun()

	m.Points("shop", metrics.OriginLive, 2)
	m.Points("shop", metrics.OriginArchive, 5)
	m.Skipped("RATE_UNAVAILABLE")
	m.FXLookup(true)
	m.FXLookup(false)
	m.FXLookup(true)
	m.SnapshotFetched(false)
	m.SeriesWritten(42, 1718000000)

	expected := `
# HELP pricetrack_fx_lookups_total Exchange rate lookups, by cache outcome.
# TYPE pricetrack_fx_lookups_total counter
pricetrack_fx_lookups_total{cache="hit"} 2
pricetrack_fx_lookups_total{cache="miss"} 1
# HELP pricetrack_points_total Observations extracted, by source and origin.
# TYPE pricetrack_points_total counter
pricetrack_points_total{origin="archive",source="shop"} 5
pricetrack_points_total{origin="live",source="shop"} 2
# HELP pricetrack_series_points Points in the last written series.
# TYPE pricetrack_series_points gauge
pricetrack_series_points 42
`

	rq.NoError(testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"pricetrack_fx_lookups_total",
		"pricetrack_points_total",
		"pricetrack_series_points",
	))

	count, err := testutil.GatherAndCount(m.Registry(), "pricetrack_skipped_total", "pricetrack_snapshot_fetches_total")
	rq.NoError(err)
	rq.Equal(2, count)
}
